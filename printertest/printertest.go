// Package printertest provides a stub rendering service for tests and
// local development. It accepts the same payloads as the real service and
// answers with fixed bytes, recording every request it receives.
package printertest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/printer/web"
	"github.com/adamwoolhether/printer/web/errs"
	"github.com/adamwoolhether/printer/web/middleware"
	"github.com/adamwoolhether/printer/web/mux"
)

// DefaultDocument is the body served for /document unless overridden.
var DefaultDocument = []byte("stub-pdf-bytes")

// DefaultImage is the body served for /image unless overridden.
var DefaultImage = []byte("stub-image-bytes")

const defaultSleep = time.Second

// Payload is the render request body as the service decodes it.
type Payload struct {
	Configuration map[string]any `json:"configuration" validate:"required"`
	Content       *string        `json:"content" validate:"required"`
	Time          int64          `json:"time" validate:"gt=0"`
}

// Request is one render request received by a [Service].
type Request struct {
	Route     string
	RequestID string
	UserAgent string
	Payload   Payload
	Raw       []byte
}

// Service is the stub rendering service. It implements [http.Handler].
type Service struct {
	app      *mux.App
	document []byte
	image    []byte

	mu       sync.Mutex
	requests []Request
}

// NewService builds a Service with its routes registered.
func NewService(optFns ...Option) *Service {
	opts := options{
		document: DefaultDocument,
		image:    DefaultImage,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range optFns {
		opt(&opts)
	}

	muxOpts := []mux.Option{
		mux.WithLogger(opts.logger),
		mux.WithMiddleware(
			middleware.Panics(),
			middleware.Errors(opts.logger),
			middleware.Logger(opts.logger),
		),
	}
	if opts.tracer != nil {
		muxOpts = append(muxOpts, mux.WithTracer(opts.tracer))
	}

	app := mux.New(muxOpts...)

	s := &Service{
		app:      app,
		document: opts.document,
		image:    opts.image,
	}

	app.Post("/document", s.renderDocument)
	app.Post("/image", s.renderImage)
	app.Post("/echo", s.echo)
	app.Post("/sleep", s.sleep)
	app.Post("/redirect", s.redirect)
	app.Post("/fail", s.fail)
	app.Post("/truncate", s.truncate)
	app.Post("/hangup", s.hangup)
	app.Get("/health", s.health)

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// Requests returns a copy of the render requests received so far.
func (s *Service) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)

	return out
}

func (s *Service) record(ctx context.Context, r *http.Request, p Payload, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Route:     r.URL.Path,
		RequestID: mux.GetRequestID(ctx),
		UserAgent: r.UserAgent(),
		Payload:   p,
		Raw:       raw,
	})
}

func (s *Service) decode(ctx context.Context, r *http.Request) (Payload, error) {
	ctx, span := mux.AddSpan(ctx, "render.decode", attribute.String("route", r.URL.Path))
	defer span.End()

	var p Payload
	if err := web.Decode(r, &p); err != nil {
		return Payload{}, errs.New(http.StatusBadRequest, err)
	}

	s.record(ctx, r, p, nil)

	return p, nil
}

func (s *Service) renderDocument(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if _, err := s.decode(ctx, r); err != nil {
		return err
	}

	return web.RespondBinary(ctx, w, "application/pdf", s.document)
}

func (s *Service) renderImage(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	p, err := s.decode(ctx, r)
	if err != nil {
		return err
	}

	typ := "png"
	if v, ok := p.Configuration["type"].(string); ok && v != "" {
		typ = strings.ToLower(v)
	}

	return web.RespondBinary(ctx, w, "image/"+typ, s.image)
}

// echo answers with the raw request body.
func (s *Service) echo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return errs.New(http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
	}

	s.record(ctx, r, Payload{}, raw)

	return web.RespondBinary(ctx, w, "application/json", raw)
}

// sleep waits for the duration in the "d" query parameter before serving
// the document body.
func (s *Service) sleep(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	d := defaultSleep
	if q := r.URL.Query().Get("d"); q != "" {
		parsed, err := time.ParseDuration(q)
		if err != nil {
			return errs.New(http.StatusBadRequest, fmt.Errorf("parsing delay: %w", err))
		}
		d = parsed
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
	}

	return web.RespondBinary(ctx, w, "application/pdf", s.document)
}

// redirect sends the request on to /document, keeping the method and body.
func (s *Service) redirect(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mux.SetStatusCode(ctx, http.StatusTemporaryRedirect)
	http.Redirect(w, r, "/document", http.StatusTemporaryRedirect)

	return nil
}

func (s *Service) fail(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	err := errs.New(http.StatusServiceUnavailable, errors.New("renderer unavailable"))
	err.Stack = "Error: renderer unavailable\n    at render (renderer.js:1:1)"

	return err
}

// truncate declares a body longer than the one it writes.
func (s *Service) truncate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mux.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.document)*2))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(s.document)

	return err
}

// hangup closes the connection without answering.
func (s *Service) hangup(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		return err
	}

	conn, _, err := http.NewResponseController(w).Hijack()
	if err != nil {
		return errs.NewInternal(fmt.Errorf("hijacking connection: %w", err))
	}

	return conn.Close()
}

func (s *Service) health(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.RespondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// /////////////////////////////////////////////////////////////////////////////////////////////

// Server is a [Service] listening on a loopback address.
type Server struct {
	*httptest.Server
	svc *Service
}

// NewServer starts a Server. Callers should call Close when finished.
func NewServer(optFns ...Option) *Server {
	svc := NewService(optFns...)

	return &Server{
		Server: httptest.NewServer(svc),
		svc:    svc,
	}
}

// Requests returns the render requests received so far.
func (s *Server) Requests() []Request {
	return s.svc.Requests()
}
