package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/adamwoolhether/printer/client"
	"github.com/adamwoolhether/printer/conn"
	"github.com/adamwoolhether/printer/content"
	"github.com/adamwoolhether/printer/sink"
)

const defaultURL = "http://localhost:3000"

var (
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

type renderFlags struct {
	url        string
	timeout    time.Duration
	timeoutSet bool
	config     string
	output     string
	markdown   bool
	title      string
	userAgent  string
	verbose    bool
}

func parseRenderFlags(cmd string, args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &renderFlags{}
	fs.StringVarP(&f.url, "url", "u", "", "base URL of the rendering service (default "+defaultURL+")")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "render timeout, e.g. 30s, 0 for none (default 10s)")
	fs.StringVarP(&f.config, "config", "c", "", "YAML config file")
	fs.StringVarP(&f.output, "output", "o", "-", "output file, - for stdout")
	fs.BoolVarP(&f.markdown, "markdown", "m", false, "treat the input as Markdown")
	fs.StringVar(&f.title, "title", "Document", "HTML title used with --markdown")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent header sent to the service")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	f.timeoutSet = fs.Changed("timeout")

	return f, fs.Args(), nil
}

func runRender(ctx context.Context, cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, positional, err := parseRenderFlags(cmd, args, stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one input, got %d", ErrUsage, len(positional))
	}

	fc := &fileConfig{}
	if f.config != "" {
		if fc, err = loadConfig(f.config); err != nil {
			return err
		}
	}

	input := "-"
	if len(positional) == 1 {
		input = positional[0]
	}

	body, err := readInput(input, stdin)
	if err != nil {
		return err
	}

	if f.markdown {
		conv, err := content.NewConverter(content.WithTitle(f.title))
		if err != nil {
			return err
		}
		if body, err = conv.ToHTML(ctx, body); err != nil {
			return err
		}
	}

	logger := newLogger(stderr, f.verbose)

	base := firstNonEmpty(f.url, fc.URL, defaultURL)
	timeout := resolveTimeout(f, fc)

	connOpts := []conn.Option{
		conn.WithStatusCheck(),
		conn.WithUserAgent(firstNonEmpty(f.userAgent, fc.UserAgent, "printer/"+Version)),
	}
	if f.verbose {
		connOpts = append(connOpts, conn.WithProgress())
	}

	c, err := client.New(base,
		client.WithTimeout(timeout),
		client.WithLogger(logger),
		client.WithConnOptions(connOpts...),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	out, finish, err := openOutput(f.output, stdout, logger)
	if err != nil {
		return err
	}

	switch cmd {
	case "document":
		_, err = c.RenderDocument(ctx, fc.document(), body, client.WithSink(out))
	case "image":
		_, err = c.RenderImage(ctx, fc.image(), body, client.WithSink(out))
	}

	if ferr := finish(err); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}

	logger.Debug("render written", "command", cmd, "output", f.output)

	return nil
}

// resolveTimeout picks the render timeout: an explicit flag, even 0, wins
// over the config file, which wins over the client default.
func resolveTimeout(f *renderFlags, fc *fileConfig) time.Duration {
	if f.timeoutSet {
		return f.timeout
	}
	if d, ok := fc.timeout(); ok {
		return d
	}

	return client.DefaultTimeout
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)

	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return string(b), nil
}

// openOutput returns the sink to render into and a func that finalises it
// once the render returned renderErr. Files are written in place; stdout
// is buffered, since it cannot seek.
func openOutput(path string, stdout io.Writer, logger *slog.Logger) (io.WriteSeeker, func(renderErr error) error, error) {
	if path == "-" || path == "" {
		buf := sink.New()

		return buf, func(renderErr error) error {
			defer buf.Close()
			if renderErr != nil {
				return nil
			}
			if _, err := stdout.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteOutput, err)
			}
			return nil
		}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return file, func(renderErr error) error {
		if err := file.Close(); err != nil && renderErr == nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		if renderErr != nil {
			if err := os.Remove(path); err != nil {
				logger.Error("failed to remove partial output", "path", path, "error", err)
			}
		}
		return nil
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
