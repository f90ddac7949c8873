package mux

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey struct{}

// Values is the render request state shared along the handler chain.
type Values struct {
	RequestID string
	TraceID   string
	Route     string
	Start     time.Time
	Status    int
	Written   int64

	tracer trace.Tracer
}

// GetValues returns the Values of the request in ctx. Outside a request
// it returns a zero Values stamped with the current time.
func GetValues(ctx context.Context) *Values {
	if v, ok := ctx.Value(ctxKey{}).(*Values); ok {
		return v
	}

	return &Values{Start: time.Now()}
}

// GetRequestID returns the id the client sent in [HeaderRequestID].
func GetRequestID(ctx context.Context) string {
	return GetValues(ctx).RequestID
}

// SetStatusCode records the status written for the request.
func SetStatusCode(ctx context.Context, statusCode int) {
	if v, ok := ctx.Value(ctxKey{}).(*Values); ok {
		v.Status = statusCode
	}
}

// AddWritten adds n to the count of body bytes written.
func AddWritten(ctx context.Context, n int) {
	if v, ok := ctx.Value(ctxKey{}).(*Values); ok {
		v.Written += int64(n)
	}
}

// AddSpan starts a child span of the request span. Outside a request the
// span already in ctx, if any, is returned unchanged.
func AddSpan(ctx context.Context, spanName string, keyValues ...attribute.KeyValue) (context.Context, trace.Span) {
	v, ok := ctx.Value(ctxKey{}).(*Values)
	if !ok || v.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := v.tracer.Start(ctx, spanName)
	span.SetAttributes(keyValues...)

	return ctx, span
}

func withValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}
