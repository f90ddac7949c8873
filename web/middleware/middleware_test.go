package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/middleware"
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Stack      string `json:"stack"`
}

func serve(t *testing.T, h func(ctx context.Context, w http.ResponseWriter, r *http.Request) error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/document", nil)

	if err := h(r.Context(), w, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
			t.Fatalf("decoding envelope: %v", err)
		}
	}

	return w, env
}

func TestErrors_AppError(t *testing.T) {
	var logs bytes.Buffer
	mw := middleware.Errors(slog.New(slog.NewTextHandler(&logs, nil)))

	w, env := serve(t, mw(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.New(http.StatusBadRequest, errors.New("content is required"))
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if env.StatusCode != http.StatusBadRequest || env.Message != "content is required" {
		t.Errorf("envelope = %+v", env)
	}
	if !strings.Contains(logs.String(), "content is required") {
		t.Errorf("exp error logged, got: %s", logs.String())
	}
}

func TestErrors_InternalErrorObscured(t *testing.T) {
	mw := middleware.Errors(slog.New(slog.DiscardHandler))

	w, env := serve(t, mw(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("browser crashed at 0xdeadbeef")
	}))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if env.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("exp internal message obscured, got %q", env.Message)
	}
}

func TestErrors_FieldErrors(t *testing.T) {
	mw := middleware.Errors(slog.New(slog.DiscardHandler))

	w, env := serve(t, mw(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewFieldsError("time", errors.New("must be greater than 0"))
	}))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if !strings.Contains(env.Message, "time") {
		t.Errorf("exp field name in message, got %q", env.Message)
	}
}

func TestErrors_NoError(t *testing.T) {
	mw := middleware.Errors(slog.New(slog.DiscardHandler))

	w, _ := serve(t, mw(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	}))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestPanics_Recovery(t *testing.T) {
	handler := middleware.Panics()(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("something broke")
	})

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	err := handler(r.Context(), httptest.NewRecorder(), r)

	appErr, ok := errors.AsType[*errs.Error](err)
	if !ok {
		t.Fatalf("exp *errs.Error, got: %v", err)
	}
	if !appErr.IsInternal() {
		t.Error("exp panic to be reported as internal")
	}
	for _, want := range []string{"PANIC", "something broke", "TRACE"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("exp %q in message", want)
		}
	}
}

func TestLogger(t *testing.T) {
	var logs bytes.Buffer
	mw := middleware.Logger(slog.New(slog.NewTextHandler(&logs, nil)))

	handler := mw(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	})

	r := httptest.NewRequest(http.MethodPost, "/image", nil)
	if err := handler(r.Context(), httptest.NewRecorder(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"request started", "request completed", "path=/image"} {
		if !strings.Contains(out, want) {
			t.Errorf("exp %q in logs, got: %s", want, out)
		}
	}
}
