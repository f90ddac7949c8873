package main

import (
	"context"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/adamwoolhether/printer/printertest"
	"github.com/adamwoolhether/printer/web/server"
)

func runStub(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("stub", flag.ContinueOnError)
	fs.SetOutput(stderr)

	addr := fs.StringP("addr", "a", ":3000", "address to listen on")
	document := fs.String("document", string(printertest.DefaultDocument), "body served for /document")
	image := fs.String("image", string(printertest.DefaultImage), "body served for /image")
	shutdown := fs.Duration("shutdown-timeout", 5*time.Second, "time allowed for in-flight requests on shutdown")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	logger := newLogger(stderr, *verbose)

	svc := printertest.NewService(
		printertest.WithDocument([]byte(*document)),
		printertest.WithImage([]byte(*image)),
		printertest.WithLogger(logger),
	)

	srv := server.New(svc,
		server.WithAddr(*addr),
		server.WithShutdownTimeout(*shutdown),
		server.WithLogger(logger),
	)

	return srv.Run(ctx)
}
