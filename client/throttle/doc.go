// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound requests with the token bucket from [golang.org/x/time/rate].
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 10, Burst: 5},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//
// A request blocks until a token is available or its context ends.
// The connector package installs it via connector.WithThrottle, which
// is how callers bound the otherwise unlimited fan-out of a session.
package throttle
