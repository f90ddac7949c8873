package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/adamwoolhether/printer/config"
	"github.com/adamwoolhether/printer/conn"
	"github.com/adamwoolhether/printer/errs"
	"github.com/adamwoolhether/printer/sink"
	"github.com/adamwoolhether/printer/validate"
)

// Routes of the rendering service.
const (
	RouteDocument = "/document"
	RouteImage    = "/image"
)

// Client renders through the service found at a fixed base URL. It owns
// at most one [conn.Conn] at a time.
type Client struct {
	base     string
	timeout  time.Duration
	logger   *slog.Logger
	connOpts []conn.Option

	conn *conn.Conn
}

// New sanitizes and validates base and applies the options. No connection
// is opened until the first render.
func New(base string, optFns ...Option) (*Client, error) {
	base = validate.SanitizeTarget(base)

	if err := validate.Target(base); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := &Client{
		base:    base,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}

	if opts.timeout != nil {
		c.timeout = *opts.timeout
	}
	if err := validate.Timeout(c.timeout); err != nil {
		return nil, err
	}
	if opts.logger != nil {
		c.logger = opts.logger
	}

	c.connOpts = append([]conn.Option{conn.WithLogger(c.logger)}, opts.connOpts...)

	return c, nil
}

// RenderDocument renders content as a PDF with cfg, nil meaning
// [config.NewDocument], and returns the sink holding the result.
func (c *Client) RenderDocument(ctx context.Context, cfg *config.Document, content string, opts ...RenderOption) (io.WriteSeeker, error) {
	if cfg == nil {
		cfg = config.NewDocument()
	}

	return c.render(ctx, RouteDocument, cfg, content, opts...)
}

// RenderDocumentBytes renders content as a PDF and returns its bytes.
func (c *Client) RenderDocumentBytes(ctx context.Context, cfg *config.Document, content string) ([]byte, error) {
	ws, err := c.RenderDocument(ctx, cfg, content)
	if err != nil {
		return nil, err
	}

	return c.readAll(ws)
}

// RenderImage renders content as an image with cfg, nil meaning
// [config.NewImage], and returns the sink holding the result.
func (c *Client) RenderImage(ctx context.Context, cfg *config.Image, content string, opts ...RenderOption) (io.WriteSeeker, error) {
	if cfg == nil {
		cfg = config.NewImage()
	}

	return c.render(ctx, RouteImage, cfg, content, opts...)
}

// RenderImageBytes renders content as an image and returns its bytes.
func (c *Client) RenderImageBytes(ctx context.Context, cfg *config.Image, content string) ([]byte, error) {
	ws, err := c.RenderImage(ctx, cfg, content)
	if err != nil {
		return nil, err
	}

	return c.readAll(ws)
}

func (c *Client) render(ctx context.Context, route string, cfg any, content string, optFns ...RenderOption) (io.WriteSeeker, error) {
	var opts renderOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, err
		}
	}

	cn, err := c.connection(route)
	if err != nil {
		return nil, err
	}

	if !opts.keepAlive {
		defer c.release()
	}

	ws := opts.sink
	if ws == nil {
		ws = sink.New()
	}

	if err := cn.Payload(cfg, content); err != nil {
		return nil, err
	}

	if err := cn.Make(ctx, ws); err != nil {
		return nil, err
	}

	return ws, nil
}

// connection returns an active Conn bound to route. A Conn bound to another
// route is released first; an inactive one is replaced.
func (c *Client) connection(route string) (*conn.Conn, error) {
	target := join(c.base, route)

	if c.conn != nil && c.conn.IsActive() {
		current, err := c.conn.Target()
		if err == nil && current == pathOf(target) {
			return c.conn, nil
		}

		c.logger.Debug("switching route", "from", current, "to", route)
		c.release()
	}

	cn, err := conn.New(target, c.timeout, c.connOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = cn

	return cn, nil
}

// release closes the current Conn if it is still active and forgets it.
func (c *Client) release() {
	if c.conn == nil {
		return
	}

	if c.conn.IsActive() {
		if err := c.conn.Done(); err != nil {
			c.logger.Error("failed to release connection", "error", err)
		}
	}
	c.conn = nil
}

// Close releases the connection kept open by [WithKeepAlive], if any.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.release()
	return nil
}

func join(base, route string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(route, "/")
}

func pathOf(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}

	return u.Path
}

// readAll reads ws from its current position to the end and releases it.
func (c *Client) readAll(ws io.WriteSeeker) ([]byte, error) {
	r, ok := ws.(io.Reader)
	if !ok {
		return nil, fmt.Errorf("%w: sink %T is not readable", errs.ErrClient, ws)
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sink: %w", errs.ErrClient, err)
	}

	if closer, ok := ws.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close sink", "error", err)
		}
	}

	return b, nil
}
