// Package middleware holds the request middleware of the rendering service.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/printer/web/mux"
)

// Logger logs the start and completion of each render request.
func Logger(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := mux.GetValues(ctx)
			reqLog := log.With("route", v.Route, "request_id", v.RequestID)

			reqLog.Info("request started", "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr, "user_agent", r.UserAgent())

			err := handler(ctx, w, r)

			reqLog.Info("request completed", "status", v.Status, "bytes", v.Written, "since", time.Since(v.Start).String())

			return err
		}

		return h
	}

	return m
}
