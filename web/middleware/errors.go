package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/adamwoolhether/printer/web"
	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/mux"
)

// Errors turns handler errors into the service error envelope.
func Errors(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			var appErr *errs.Error
			if fieldErr, ok := errors.AsType[errs.FieldErrors](err); ok {
				appErr = errs.New(http.StatusBadRequest, fieldErr)
			} else if appErr, ok = errors.AsType[*errs.Error](err); !ok {
				appErr = errs.NewInternal(err)
			}

			v := mux.GetValues(ctx)
			log.Error("render failed",
				"route", v.Route,
				"request_id", v.RequestID,
				"trace_id", v.TraceID,
				"status", appErr.StatusCode,
				"error", err,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName),
			)

			if appErr.InnerErr { // after logging, obscure the internal error from public view.
				appErr.Message = http.StatusText(appErr.StatusCode)
			}

			return web.RespondError(ctx, w, appErr)
		}

		return h
	}

	return m
}
