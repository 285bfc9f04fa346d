package connector

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/adamwoolhether/apiconn/client/download"
	"github.com/adamwoolhether/apiconn/client/throttle"
	"github.com/adamwoolhether/apiconn/internal/validate"
)

// Option is a functional option for configuring an [HTTP] connector via [New].
type Option func(*options) error

type options struct {
	client     *http.Client
	rt         http.RoundTripper
	logger     *slog.Logger
	settings   Settings
	userAgent  string
	throttle   *throttle.Config
	jar        http.CookieJar
	compress   bool
	outputFile string
	dlOpts     []download.Option
	progress   download.ProgressFunc
}

// WithClient replaces the base [http.Client]. It is copied, never mutated.
func WithClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		o.client = hc
		return nil
	}
}

// WithTransport sets the base [http.RoundTripper]. Connect and read
// timeouts only apply to the default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		o.rt = rt
		return nil
	}
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithSettings sets the settings layer, resolved over [Defaults].
func WithSettings(s Settings) Option {
	return func(o *options) error {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("validating settings: %w", err)
		}
		o.settings = s
		return nil
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(header string) Option {
	return func(o *options) error {
		o.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting.
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

// NewCookieJar returns a cookie jar scoped by the public suffix list.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return jar, nil
}

// WithCookieJar stores and replays cookies in a jar owned by this
// connector. Use [WithJar] with [NewCookieJar] to share cookies.
func WithCookieJar() Option {
	return func(o *options) error {
		jar, err := NewCookieJar()
		if err != nil {
			return err
		}
		o.jar = jar
		return nil
	}
}

// WithJar uses a caller supplied cookie jar, e.g. one shared by several
// connectors.
func WithJar(jar http.CookieJar) Option {
	return func(o *options) error {
		if jar == nil {
			return errors.New("jar must not be nil")
		}
		o.jar = jar
		return nil
	}
}

// WithCompression advertises gzip and zstd and decodes compressed
// response bodies.
func WithCompression() Option {
	return func(o *options) error {
		o.compress = true
		return nil
	}
}

// WithOutputFile streams successful response bodies to path instead of
// memory. The response then carries BodyFile rather than Body.
func WithOutputFile(path string, dlOpts ...download.Option) Option {
	return func(o *options) error {
		if path == "" {
			return download.ErrEmptyDestination
		}
		o.outputFile = path
		o.dlOpts = dlOpts
		return nil
	}
}

// WithProgress reports body transfer progress.
func WithProgress(fn download.ProgressFunc) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("progress func must not be nil")
		}
		o.progress = fn
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
