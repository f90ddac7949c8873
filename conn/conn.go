package conn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/printer/errs"
	"github.com/adamwoolhether/printer/throttle"
	"github.com/adamwoolhether/printer/validate"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code.
const maxErrBodySize = 4 << 10 // 4KB

// HeaderRequestID carries the id generated for each staged payload.
const HeaderRequestID = "X-Request-Id"

// now is swapped in tests to pin the payload time.
var now = time.Now

// Conn owns one HTTP handle bound to a fixed target. It runs one
// render request per Make call and can be reused for further payloads
// against the same target until Done is called.
//
// A Conn is not safe for concurrent use.
type Conn struct {
	target      *url.URL
	effective   *url.URL
	timeout     time.Duration
	hc          *http.Client
	transport   *http.Transport // nil when the round tripper is caller-owned
	slot        *slot
	statusCheck bool
	progress    bool
	logger      *slog.Logger
	tracer      trace.Tracer

	body      []byte
	requestID string
}

// payload is the envelope posted to the rendering service.
type payload struct {
	Configuration any    `json:"configuration"`
	Content       string `json:"content"`
	Time          int64  `json:"time"`
}

// New validates target and timeout and opens a Conn bound to target.
// A zero timeout disables the request deadline.
func New(target string, timeout time.Duration, optFns ...Option) (*Conn, error) {
	if err := validate.Target(target); err != nil {
		return nil, err
	}
	if err := validate.Timeout(timeout); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying conn option: %w", err)
		}
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing target: %w", errs.ErrInvalidArgument, err)
	}

	c := &Conn{
		target:      u,
		effective:   u,
		timeout:     timeout,
		slot:        &slot{},
		statusCheck: opts.statusCheck,
		progress:    opts.progress,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("no-op tracer"),
	}

	if opts.logger != nil {
		c.logger = opts.logger
	}
	if opts.tracer != nil {
		c.tracer = opts.tracer
	}

	var rt http.RoundTripper
	if opts.rt != nil {
		rt = opts.rt
	} else {
		c.transport = newTransport()
		rt = c.transport
	}
	if opts.userAgent != "" {
		rt = userAgent{value: opts.userAgent, base: rt}
	}
	if opts.throttle != nil {
		rt, err = throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return c.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
	}

	maxRedirects := defaultMaxRedirects
	if opts.maxRedirects != nil {
		maxRedirects = *opts.maxRedirects
	}

	c.hc = &http.Client{
		Transport: rt,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if opts.noFollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}

	c.logger.Debug("conn opened", "target", u.String(), "timeout", timeout.String())

	return c, nil
}

// newTransport clones the std-lib default transport, restricted to a
// single connection per host so consecutive renders share one socket.
func newTransport() *http.Transport {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Transport{MaxConnsPerHost: 1, MaxIdleConnsPerHost: 1}
	}

	tr := base.Clone()
	tr.MaxConnsPerHost = 1
	tr.MaxIdleConnsPerHost = 1

	return tr
}

// IsActive reports whether the Conn still holds its handle.
func (c *Conn) IsActive() bool {
	return c.hc != nil
}

// Payload stages the request body for the next Make. The configuration is
// passed through untouched; a nil configuration is sent as an empty object.
func (c *Conn) Payload(configuration any, content string) error {
	if !c.IsActive() {
		return errs.ErrConnectionInactive
	}

	if configuration == nil {
		configuration = struct{}{}
	}

	body, err := json.Marshal(payload{
		Configuration: configuration,
		Content:       content,
		Time:          now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("%w: encoding payload: %w", errs.ErrInvalidArgument, err)
	}

	c.body = body
	c.requestID = uuid.NewString()

	return nil
}

// Make posts the staged payload and streams the response body into sink,
// starting at the sink's current position. On success the sink is
// seeked back to that position. Network and protocol failures are
// returned as [*errs.ConnectionError] and never retried.
func (c *Conn) Make(ctx context.Context, sink io.WriteSeeker) (err error) {
	if !c.IsActive() {
		return errs.ErrConnectionInactive
	}

	if ctx == nil {
		return fmt.Errorf("%w: nil context", errs.ErrInvalidArgument)
	}
	if isNil(sink) {
		return fmt.Errorf("%w: sink must not be nil", errs.ErrInvalidArgument)
	}

	position, err := sink.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w: reading sink position: %w", errs.ErrUnexpectedValue, err)
	}

	c.slot.set(sink)
	defer c.slot.clear()

	ctx, span := c.tracer.Start(ctx, "conn.make")
	span.SetAttributes(
		attribute.String("target", c.target.String()),
		attribute.String("request_id", c.requestID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()

	n, err := c.exec(ctx)
	if err != nil {
		c.logger.Debug("render failed", "target", c.target.Path, "request_id", c.requestID, "error", err)
		return err
	}

	if _, err := sink.Seek(position, io.SeekStart); err != nil {
		return fmt.Errorf("%w: restoring sink position %d: %w", errs.ErrUnexpectedValue, position, err)
	}

	c.logger.Debug("render complete", "target", c.effective.Path, "request_id", c.requestID, "bytes", n, "since", time.Since(start).String())

	return nil
}

// exec runs the request and streams the body through the slot.
func (c *Conn) exec(ctx context.Context) (int64, error) {
	if c.target.Scheme != "http" && c.target.Scheme != "https" {
		return 0, errs.NewConnectionError(errs.CodeUnsupportedProtocol, fmt.Errorf("protocol %q not supported", c.target.Scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target.String(), bytes.NewReader(c.body))
	if err != nil {
		return 0, errs.NewConnectionError(errs.CodeSend, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.requestID != "" {
		req.Header.Set(HeaderRequestID, c.requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, errs.NewConnectionError(classify(err, errs.CodeSend), err)
	}

	discardBody := false
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrBodySize)); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.Request != nil && resp.Request.URL != nil {
		c.effective = resp.Request.URL
	}

	if c.statusCheck && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		discardBody = true
		return 0, statusError(resp)
	}

	var w io.Writer = c.slot
	if c.progress {
		w = &progressWriter{
			w:         w,
			logger:    c.logger,
			path:      c.effective.Path,
			total:     resp.ContentLength,
			startTime: time.Now(),
		}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errs.NewConnectionError(classify(err, errs.CodeReceive), err)
	}

	return n, nil
}

func statusError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	usErr := &errs.UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Err:        errs.ErrUnexpectedStatusCode,
	}

	var envelope errs.ServiceError
	if json.Unmarshal(b, &envelope) == nil && (envelope.StatusCode != 0 || envelope.Message != "") {
		usErr.Service = &envelope
	}

	return usErr
}

func isNil(sink io.WriteSeeker) bool {
	if sink == nil {
		return true
	}

	v := reflect.ValueOf(sink)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}

	return false
}

// Done releases the handle. The Conn cannot be used afterwards.
func (c *Conn) Done() error {
	if !c.IsActive() {
		return errs.ErrConnectionInactive
	}

	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}

	c.hc = nil
	c.transport = nil
	c.body = nil
	c.slot.clear()

	c.logger.Debug("conn closed", "target", c.target.String())

	return nil
}

// Target returns the path of the URL in effect: the bound target until a
// request completes, then the final URL after any redirects.
func (c *Conn) Target() (string, error) {
	if !c.IsActive() {
		return "", errs.ErrConnectionInactive
	}

	if c.effective == nil || c.effective.Path == "" {
		return "", fmt.Errorf("%w: target path is unknown", errs.ErrUnexpectedValue)
	}

	return c.effective.Path, nil
}
