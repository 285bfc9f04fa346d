package message

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Response is the result of performing a [Request]. A connector always
// produces one: transport failures are carried in Err, in which case
// StatusCode is 0.
type Response struct {
	StatusCode int
	Header     Header
	Body       []byte
	BodyFile   string
	OriginURL  string
	FinalURL   string
	Err        error
	UserInfo   map[string]any
}

// Failure returns a response carrying err for the request to originURL.
func Failure(originURL string, err error) *Response {
	return &Response{OriginURL: originURL, Err: err}
}

// Failed reports whether a failure was captured.
func (r *Response) Failed() bool {
	return r.Err != nil
}

// HasStatus reports whether a status code was received.
func (r *Response) HasStatus() bool {
	return r.StatusCode > 0
}

// Success reports a 2xx status with no captured failure.
func (r *Response) Success() bool {
	return !r.Failed() && r.StatusCode >= 200 && r.StatusCode < 300
}

// Open returns a reader over the body buffer, or the body file when no
// buffer is present.
func (r *Response) Open() (io.ReadCloser, error) {
	switch {
	case r.Body != nil:
		return io.NopCloser(bytes.NewReader(r.Body)), nil
	case r.BodyFile != "":
		f, err := os.Open(r.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("opening body file: %w", err)
		}
		return f, nil
	}
	return nil, ErrNoBody
}

// Bytes returns the body, reading the body file if needed.
func (r *Response) Bytes() ([]byte, error) {
	if r.Body != nil {
		return r.Body, nil
	}
	if r.BodyFile == "" {
		return nil, ErrNoBody
	}

	b, err := os.ReadFile(r.BodyFile)
	if err != nil {
		return nil, fmt.Errorf("reading body file: %w", err)
	}
	return b, nil
}

// String renders a multi-line transcript for diagnostics.
func (r *Response) String() string {
	var b strings.Builder
	switch {
	case r.HasStatus():
		fmt.Fprintf(&b, "%d %s\n", r.StatusCode, r.FinalURL)
	default:
		fmt.Fprintf(&b, "--- %s\n", r.OriginURL)
	}
	if r.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", r.Err)
	}
	writeHeader(&b, r.Header)
	writeBody(&b, r.Body, r.BodyFile)
	return b.String()
}

// LogValue implements [slog.LogValuer].
func (r *Response) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("origin_url", r.OriginURL),
	}
	if r.HasStatus() {
		attrs = append(attrs, slog.Int("status", r.StatusCode), slog.String("final_url", r.FinalURL))
	}
	if r.Body != nil {
		attrs = append(attrs, slog.Int("body_size", len(r.Body)))
	}
	if r.BodyFile != "" {
		attrs = append(attrs, slog.String("body_file", r.BodyFile))
	}
	if r.Err != nil {
		attrs = append(attrs, slog.String("error", r.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}
