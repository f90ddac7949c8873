package printertest

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Service].
type Option func(*options)

type options struct {
	document []byte
	image    []byte
	logger   *slog.Logger
	tracer   trace.Tracer
}

// WithDocument sets the bytes served for a rendered document.
func WithDocument(body []byte) Option {
	return func(o *options) {
		o.document = body
	}
}

// WithImage sets the bytes served for a rendered image.
func WithImage(body []byte) Option {
	return func(o *options) {
		o.image = body
	}
}

// WithLogger sets the request logger. Logs are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer used to span each request.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}
