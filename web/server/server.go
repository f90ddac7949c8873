package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const defaultAddr = ":3000"

// Server serves the rendering stub until its context ends or the process
// is signalled.
type Server struct {
	http            *http.Server
	ln              net.Listener
	shutdownTimeout time.Duration
	logger          *slog.Logger
	onShutdown      []func(ctx context.Context) error
}

// New creates a Server for handler.
func New(handler http.Handler, optFns ...Option) *Server {
	var o options
	for _, opt := range optFns {
		opt(&o)
	}

	t := DefaultTimeouts
	if o.timeouts != nil {
		t.Read = cmp.Or(o.timeouts.Read, t.Read)
		t.Write = cmp.Or(o.timeouts.Write, t.Write)
		t.Idle = cmp.Or(o.timeouts.Idle, t.Idle)
	}

	return &Server{
		http: &http.Server{
			Addr:         cmp.Or(o.addr, defaultAddr),
			Handler:      handler,
			ReadTimeout:  t.Read,
			WriteTimeout: t.Write,
			IdleTimeout:  t.Idle,
		},
		ln:              o.listener,
		shutdownTimeout: cmp.Or(o.shutdownTimeout, 20*time.Second),
		logger:          cmp.Or(o.logger, slog.Default()),
		onShutdown:      o.onShutdown,
	}
}

// Listen binds the configured address unless a listener was supplied,
// and returns the bound address. Run calls it when needed.
func (s *Server) Listen() (net.Addr, error) {
	if s.ln == nil {
		ln, err := net.Listen("tcp", s.http.Addr)
		if err != nil {
			return nil, fmt.Errorf("listening on %s: %w", s.http.Addr, err)
		}
		s.ln = ln
	}

	return s.ln.Addr(), nil
}

// Run serves until ctx is done or a SIGINT or SIGTERM arrives, then shuts
// down gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "addr", addr.String())
		serveErr <- s.http.Serve(s.ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)

	case <-ctx.Done():
		stop()
	}

	s.logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	s.logger.Info("shutdown complete")

	return nil
}

// Shutdown runs the registered shutdown hooks, then drains in-flight
// renders within the deadline of ctx. Hook failures are logged only.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, fn := range s.onShutdown {
		if err := fn(ctx); err != nil {
			s.logger.Error("shutdown hook", "error", err)
		}
	}

	if err := s.http.Shutdown(ctx); err != nil {
		_ = s.http.Close()
		return fmt.Errorf("server didn't stop gracefully: %w", err)
	}

	return nil
}
