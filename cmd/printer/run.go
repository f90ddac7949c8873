package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"
)

// ErrUsage reports an unknown command or missing argument.
var ErrUsage = errors.New("usage")

const usage = `Usage: printer <command> [flags] [input]

Commands:
  document   render HTML or Markdown into a PDF
  image      render HTML or Markdown into an image
  stub       run a stub rendering service
  version    print the version

Run "printer <command> --help" for the flags of a command.
`

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	err := dispatch(ctx, args, stdin, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}

	return err
}

func dispatch(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "document", "image":
		return runRender(ctx, cmd, rest, stdin, stdout, stderr)
	case "stub":
		return runStub(ctx, rest, stderr)
	case "version", "--version":
		fmt.Fprintln(stdout, "printer", Version)
		return nil
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
