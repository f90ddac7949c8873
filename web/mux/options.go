package mux

import (
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Option configures an App.
type Option func(*options)

type options struct {
	tracer trace.Tracer
	logger *slog.Logger
	mw     []Middleware
}

// mwPriority places the known middleware regardless of the order they are
// passed in. Anything else lands between Errors and Panics.
var mwPriority = map[string]int{
	"Logger": 1,
	"Errors": 2,
	"Panics": 100,
}

const customPriority = 3

// WithMiddleware sets the App middleware. Logger runs outermost, then
// Errors, then custom middleware in the given order, then Panics.
func WithMiddleware(mw ...Middleware) Option {
	sorted := slices.Clone(mw)
	slices.SortStableFunc(sorted, func(a, b Middleware) int {
		return priority(a) - priority(b)
	})

	return func(opts *options) {
		opts.mw = sorted
	}
}

// WithTracer sets the tracer the request spans are started on.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) {
		opts.tracer = tracer
	}
}

// WithLogger sets the logger for errors no middleware handled.
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

func priority(mw Middleware) int {
	if p, ok := mwPriority[constructor(mw)]; ok {
		return p
	}
	return customPriority
}

// constructor names the function that built mw:
// ".../web/middleware.Logger.func1" yields "Logger".
func constructor(mw Middleware) string {
	fn := runtime.FuncForPC(reflect.ValueOf(mw).Pointer()).Name()

	if i := strings.LastIndex(fn, "/"); i >= 0 {
		fn = fn[i+1:]
	}

	parts := strings.Split(fn, ".")
	if len(parts) >= 2 {
		return parts[1]
	}

	return fn
}
