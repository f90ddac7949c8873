package conn

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/printer/throttle"
)

// defaultMaxRedirects matches the limit of the std-lib http.Client.
const defaultMaxRedirects = 10

// Option is a functional option for configuring a [Conn] via [New].
type Option func(*options) error

type options struct {
	rt                http.RoundTripper
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	maxRedirects      *int
	statusCheck       bool
	progress          bool
	logger            *slog.Logger
	tracer            trace.Tracer
}

// WithRoundTripper replaces the private transport a Conn opens for itself.
// The Conn does not own rt: Done will not close its idle connections.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("round tripper must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to every render request.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting of render requests.
func WithThrottle(rps, burst int) Option {
	return func(o *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects stops the Conn from following HTTP redirects.
// The redirect response body is streamed to the sink as is.
func WithNoFollowRedirects() Option {
	return func(o *options) error {
		o.noFollowRedirects = true
		return nil
	}
}

// WithMaxRedirects caps the number of redirects followed per request.
func WithMaxRedirects(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("max redirects[%d] must not be negative", n)
		}
		o.maxRedirects = &n
		return nil
	}
}

// WithStatusCheck makes Make fail with an [errs.UnexpectedStatusError] when
// the service answers outside the 2xx range, instead of streaming the
// error envelope into the sink.
func WithStatusCheck() Option {
	return func(o *options) error {
		o.statusCheck = true
		return nil
	}
}

// WithProgress enables periodic transfer progress logging.
func WithProgress() Option {
	return func(o *options) error {
		o.progress = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the Conn.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to span each Make call.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
