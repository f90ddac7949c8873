// Package throttle provides an [http.RoundTripper] that rate-limits
// render requests using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 2, Burst: 1},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//
// Connections install it through conn.WithThrottle. When the budget is
// spent, the next render blocks until a token is available or the
// request context ends.
package throttle
