package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/mux"
)

// Panics recovers from panics in a render handler and turns them into an
// internal error, so the client still receives an envelope.
func Panics() mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = errs.NewInternal(fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(trace)))
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
