package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/adamwoolhether/printer/conn"
	"github.com/adamwoolhether/printer/errs"
)

// DefaultTimeout bounds each render request unless overridden with [WithTimeout].
const DefaultTimeout = 10 * time.Second

// Option is a functional option for configuring a [Client] via [New].
type Option func(*options) error

type options struct {
	timeout  *time.Duration
	logger   *slog.Logger
	connOpts []conn.Option
}

// WithTimeout sets the deadline of each render request. Zero disables it.
// Negative values are rejected by [New].
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.timeout = &d
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the Client and the
// connections it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithConnOptions passes options to every connection the Client opens.
func WithConnOptions(opts ...conn.Option) Option {
	return func(o *options) error {
		o.connOpts = append(o.connOpts, opts...)
		return nil
	}
}

// /////////////////////////////////////////////////////////////////////////////////////////////

// RenderOption configures a single render call.
type RenderOption func(*renderOpts) error

type renderOpts struct {
	sink      io.WriteSeeker
	keepAlive bool
}

// WithSink appends the rendered result to ws, starting at its current
// position, instead of a fresh in-memory buffer.
func WithSink(ws io.WriteSeeker) RenderOption {
	return func(o *renderOpts) error {
		if ws == nil {
			return fmt.Errorf("%w: sink must not be nil", errs.ErrInvalidArgument)
		}
		o.sink = ws
		return nil
	}
}

// WithKeepAlive keeps the connection open after the render, so the next
// call to the same route reuses it. Release it with [Client.Close].
func WithKeepAlive() RenderOption {
	return func(o *renderOpts) error {
		o.keepAlive = true
		return nil
	}
}
