// Package web holds the request and response helpers shared by the
// rendering service handlers.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/mux"
)

// RespondJSON writes data as JSON with statusCode. Nothing is written for
// 204 No Content.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	if statusCode == http.StatusNoContent {
		mux.SetStatusCode(ctx, statusCode)
		w.WriteHeader(statusCode)
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}

	return write(ctx, w, statusCode, "application/json", b)
}

// RespondBinary writes a rendered artifact with the given content type.
func RespondBinary(ctx context.Context, w http.ResponseWriter, contentType string, data []byte) error {
	return write(ctx, w, http.StatusOK, contentType, data)
}

// RespondError writes the service error envelope for err.
func RespondError(ctx context.Context, w http.ResponseWriter, err *errs.Error) error {
	return RespondJSON(ctx, w, err.StatusCode, err)
}

func write(ctx context.Context, w http.ResponseWriter, statusCode int, contentType string, body []byte) error {
	mux.SetStatusCode(ctx, statusCode)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(statusCode)

	n, err := w.Write(body)
	mux.AddWritten(ctx, n)

	return err
}
