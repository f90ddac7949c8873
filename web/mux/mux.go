// Package mux routes render requests through an error-returning handler
// chain.
package mux

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// HeaderRequestID is read from incoming requests and exposed via [GetRequestID].
const HeaderRequestID = "X-Request-Id"

// Handler serves one request. A returned error is left to the middleware.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware wraps a Handler.
type Middleware func(handler Handler) Handler

// App holds the routes of a rendering service.
type App struct {
	mux    *http.ServeMux
	mw     []Middleware
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an App. Errors that reach the top of the chain are logged
// to slog.Default() and spans go to a no-op tracer unless overridden.
func New(optFns ...Option) *App {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}

	a := App{
		mux:    http.NewServeMux(),
		mw:     opts.mw,
		logger: opts.logger,
		tracer: opts.tracer,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.tracer == nil {
		a.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	return &a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Use appends mw to the chain of every route registered afterwards.
func (a *App) Use(mw ...Middleware) {
	a.mw = append(a.mw, mw...)
}

// Get registers fn for GET requests at path.
func (a *App) Get(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, fn, mw...)
}

// Post registers fn for POST requests at path.
func (a *App) Post(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, fn, mw...)
}

// Handle registers handler for method and path. The App middleware runs
// first, then mw, then handler.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrap(a.mw, wrap(mw, handler))

	a.mux.HandleFunc(method+" "+path, func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.startSpan(w, r)
		defer span.End()

		v := Values{
			RequestID: r.Header.Get(HeaderRequestID),
			Route:     path,
			Start:     time.Now().UTC(),
			tracer:    a.tracer,
		}
		if sc := span.SpanContext(); sc.HasTraceID() {
			v.TraceID = sc.TraceID().String()
		}
		span.SetAttributes(attribute.String("request_id", v.RequestID))

		if err := handler(withValues(ctx, &v), w, r); err != nil {
			a.logger.Error("unhandled render error", "route", path, "request_id", v.RequestID, "error", err)
		}
	})
}

// startSpan continues any trace the client propagated and echoes the
// trace context on the response.
func (a *App) startSpan(w http.ResponseWriter, r *http.Request) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ctx, span := a.tracer.Start(ctx, "render.handler")
	span.SetAttributes(attribute.String("path", r.URL.Path))

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

	return ctx, span
}

// wrap applies mw so that mw[0] runs first.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, fn := range slices.Backward(mw) {
		if fn != nil {
			handler = fn(handler)
		}
	}

	return handler
}
