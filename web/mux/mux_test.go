package mux_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/printer/web"
	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/middleware"
	"github.com/adamwoolhether/printer/web/mux"
)

func TestApp_Post(t *testing.T) {
	app := mux.New()
	app.Post("/document", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.RespondBinary(ctx, w, "application/pdf", []byte("pdf"))
	})

	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/document", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /document: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "pdf" {
		t.Fatalf("status = %d, body = %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/document")
	if err != nil {
		t.Fatalf("GET /document: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestApp_ContextValues(t *testing.T) {
	var got *mux.Values

	app := mux.New()
	app.Post("/image", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		got = mux.GetValues(ctx)
		return web.RespondJSON(ctx, w, http.StatusAccepted, nil)
	})

	r := httptest.NewRequest(http.MethodPost, "/image", nil)
	r.Header.Set(mux.HeaderRequestID, "abc-123")
	app.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("handler not called")
	}
	if got.RequestID != "abc-123" {
		t.Errorf("request id = %q", got.RequestID)
	}
	if got.Route != "/image" {
		t.Errorf("route = %q", got.Route)
	}
	if got.Status != http.StatusAccepted {
		t.Errorf("status = %d", got.Status)
	}
}

func TestApp_MiddlewareOrder(t *testing.T) {
	var order []string

	tag := func(name string) mux.Middleware {
		return func(next mux.Handler) mux.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return next(ctx, w, r)
			}
		}
	}

	app := mux.New(mux.WithMiddleware(tag("app")))
	app.Use(tag("use"))
	app.Post("/document", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		order = append(order, "handler")
		return nil
	}, tag("route"))

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/document", nil))

	if diff := cmp.Diff([]string{"app", "use", "route", "handler"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_FullStack(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	app := mux.New(
		mux.WithLogger(logger),
		mux.WithMiddleware(
			middleware.Panics(),
			middleware.Logger(logger),
			middleware.Errors(logger),
		),
	)
	app.Post("/fail", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.New(http.StatusServiceUnavailable, errors.New("renderer unavailable"))
	})
	app.Post("/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	tests := map[string]struct {
		path string
		code int
		msg  string
	}{
		"app error": {path: "/fail", code: http.StatusServiceUnavailable, msg: `"message":"renderer unavailable"`},
		"panic":     {path: "/panic", code: http.StatusInternalServerError, msg: `"message":"Internal Server Error"`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, nil))

			if w.Code != tc.code {
				t.Errorf("status = %d, want %d", w.Code, tc.code)
			}
			if !strings.Contains(w.Body.String(), tc.msg) {
				t.Errorf("body = %s, want it to contain %s", w.Body, tc.msg)
			}
		})
	}
}

func TestGetValues_NoValues(t *testing.T) {
	v := mux.GetValues(context.Background())
	if v.Start.IsZero() || v.RequestID != "" {
		t.Errorf("exp fresh values, got %+v", v)
	}
	if mux.GetRequestID(context.Background()) != "" {
		t.Error("exp empty request id")
	}

	// No request in flight: these must not panic.
	mux.SetStatusCode(context.Background(), http.StatusTeapot)
	mux.AddWritten(context.Background(), 10)

	ctx, span := mux.AddSpan(context.Background(), "noop")
	defer span.End()
	if ctx == nil {
		t.Error("exp non-nil context")
	}
}
