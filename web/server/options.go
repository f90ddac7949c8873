package server

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	addr            string
	listener        net.Listener
	timeouts        *Timeouts
	shutdownTimeout time.Duration
	logger          *slog.Logger
	onShutdown      []func(ctx context.Context) error
}

// Timeouts bounds the phases of a single connection. Zero fields keep the
// defaults of [DefaultTimeouts].
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// DefaultTimeouts leaves enough write time for a slow render.
var DefaultTimeouts = Timeouts{
	Read:  5 * time.Second,
	Write: 60 * time.Second,
	Idle:  120 * time.Second,
}

// WithAddr sets the address the server binds. Default is ":3000".
func WithAddr(addr string) Option {
	return func(o *options) {
		o.addr = addr
	}
}

// WithListener serves on an already bound listener; the address option
// is ignored.
func WithListener(ln net.Listener) Option {
	return func(o *options) {
		o.listener = ln
	}
}

// WithTimeouts overrides the connection timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(o *options) {
		o.timeouts = &t
	}
}

// WithShutdownTimeout sets how long [Server.Run] waits for in-flight
// renders once shutdown starts. Default is 20s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// OnShutdown registers fn to run, in registration order, before the
// listener stops accepting renders.
func OnShutdown(fn func(ctx context.Context) error) Option {
	return func(o *options) {
		o.onShutdown = append(o.onShutdown, fn)
	}
}
