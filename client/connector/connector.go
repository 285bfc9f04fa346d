// Package connector performs requests over net/http. A connector never
// returns an error: every transport, resource or decoding failure is
// captured in the returned [message.Response].
package connector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/adamwoolhether/apiconn/client/download"
	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/throttle"
)

var (
	// ErrStopped is wrapped into the response failure of a request
	// interrupted by [HTTP.Stop].
	ErrStopped = errors.New("connector stopped")

	// ErrUnsupportedEncoding is captured when a compressed body uses an
	// encoding the connector cannot decode.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)

// HTTP is the default connector. Each task should own its own HTTP
// value since [HTTP.Stop] severs every request it is performing.
type HTTP struct {
	client     *http.Client
	logger     *slog.Logger
	settings   Settings
	compress   bool
	outputFile string
	dlOpts     []download.Option
	progress   download.ProgressFunc

	stopCtx context.Context
	stop    context.CancelFunc
}

// New builds an HTTP connector.
func New(optFns ...Option) (*HTTP, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying connector option: %w", err)
		}
	}

	c := HTTP{
		logger:     opts.logger,
		settings:   Resolve(opts.settings, Settings{}),
		compress:   opts.compress,
		outputFile: opts.outputFile,
		dlOpts:     opts.dlOpts,
		progress:   opts.progress,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = c.defaultTransport()
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return c.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	if !*c.settings.FollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	if opts.jar != nil {
		hc.Jar = opts.jar
	}
	c.client = hc

	c.stopCtx, c.stop = context.WithCancel(context.Background())

	return &c, nil
}

func (c *HTTP) defaultTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   *c.settings.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DialContext = dialer.DialContext
	t.ResponseHeaderTimeout = *c.settings.ReadTimeout
	if c.compress {
		t.DisableCompression = true
	}
	return t
}

// Settings returns the resolved settings.
func (c *HTTP) Settings() Settings {
	return c.settings
}

// Stop cancels any in-flight request and fails later ones. It is safe
// to call more than once and after the request completed.
func (c *HTTP) Stop() {
	c.stop()
}

// Perform executes req. The returned response is never nil.
func (c *HTTP) Perform(ctx context.Context, task message.Task, req *message.Request) *message.Response {
	origin := req.URL.String()
	logger := c.logger.With("task", taskID(task))

	if c.stopCtx.Err() != nil {
		return message.Failure(origin, ErrStopped)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unregister := context.AfterFunc(c.stopCtx, cancel)
	defer unregister()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return message.Failure(origin, err)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return message.Failure(origin, c.wrapStopped(fmt.Errorf("performing request: %w", err)))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	out := message.Response{
		StatusCode: resp.StatusCode,
		Header:     message.HeaderFromHTTP(resp.Header),
		OriginURL:  origin,
		FinalURL:   resp.Request.URL.String(),
		UserInfo:   req.UserInfo,
	}

	body, expected, err := c.decodeBody(resp, &out.Header)
	if err != nil {
		return message.Failure(origin, err)
	}
	defer body.Close()

	if c.outputFile != "" && out.StatusCode >= 200 && out.StatusCode < 300 {
		opts := c.dlOpts
		if c.progress != nil {
			opts = append(opts[:len(opts):len(opts)], download.WithProgressFunc(c.progress))
		}
		if err := download.Handle(ctx, body, expected, c.outputFile, logger, opts...); err != nil {
			return message.Failure(origin, c.wrapStopped(fmt.Errorf("writing output file: %w", err)))
		}
		out.BodyFile = c.outputFile
	} else {
		var buf bytes.Buffer
		var w io.Writer = &buf
		var tracker *download.Tracker
		if c.progress != nil {
			tracker = download.NewTracker(w, expected, c.progress)
			w = tracker
		}
		if _, err := io.Copy(w, body); err != nil {
			return message.Failure(origin, c.wrapStopped(fmt.Errorf("reading response body: %w", err)))
		}
		if tracker != nil {
			tracker.Finish()
		}
		out.Body = buf.Bytes()
		if out.Body == nil {
			out.Body = []byte{}
		}
	}

	logger.Debug("request performed", "status", out.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	return &out
}

func (c *HTTP) newRequest(ctx context.Context, req *message.Request) (*http.Request, error) {
	target, err := req.URL.Build()
	if err != nil {
		return nil, fmt.Errorf("building url: %w", err)
	}

	var (
		body io.Reader
		size int64
	)
	switch {
	case req.Body != nil:
		body = bytes.NewReader(req.Body)
		size = int64(len(req.Body))
	case req.BodyFile != "":
		f, err := os.Open(req.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("opening body file: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading body file size: %w", err)
		}
		body = f
		size = info.Size()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.MethodOr(http.MethodGet), target, body)
	if err != nil {
		if f, ok := body.(*os.File); ok {
			f.Close()
		}
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	if body != nil {
		httpReq.ContentLength = size
	}

	httpReq.Header = req.Header.HTTP()
	httpReq.Header.Del(message.HeaderContentLength)
	if !*c.settings.EnableCaching {
		httpReq.Header.Set(message.HeaderCacheControl, "no-cache")
		httpReq.Header.Set(message.HeaderPragma, "no-cache")
	}
	if c.compress && httpReq.Header.Get(message.HeaderAcceptEncoding) == "" {
		httpReq.Header.Set(message.HeaderAcceptEncoding, "gzip, zstd")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	return httpReq, nil
}

// decodeBody unwraps a compressed body. The decoded length is unknown,
// so the content headers no longer describe the body and are dropped.
func (c *HTTP) decodeBody(resp *http.Response, h *message.Header) (io.ReadCloser, int64, error) {
	enc := strings.ToLower(strings.TrimSpace(resp.Header.Get(message.HeaderContentEncoding)))
	if !c.compress || enc == "" || enc == "identity" {
		return io.NopCloser(resp.Body), resp.ContentLength, nil
	}

	var rc io.ReadCloser
	switch enc {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("opening gzip body: %w", err)
		}
		rc = zr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("opening zstd body: %w", err)
		}
		rc = zr.IOReadCloser()
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}

	h.Del(message.HeaderContentEncoding)
	h.Del(message.HeaderContentLength)
	return rc, -1, nil
}

func (c *HTTP) wrapStopped(err error) error {
	if c.stopCtx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrStopped, err)
	}
	return err
}

func taskID(task message.Task) string {
	if task == nil {
		return ""
	}
	return task.ID()
}
