// Package message defines the request and response values exchanged
// between request builders, connectors and response handlers.
package message

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/adamwoolhether/apiconn/client/uri"
)

// maxPreview caps how much of a body is rendered in snapshots.
const maxPreview = 1 << 10

// Request describes an outgoing exchange. Treat it as immutable once it
// is handed to a task: builders return a modified [Request.Clone].
//
// When both Body and BodyFile are set, Body is authoritative.
type Request struct {
	URL         *uri.URL
	Method      string
	Header      Header
	Body        []byte
	BodyFile    string
	UserInfo    map[string]any
	Description string
}

// NewRequest returns a request for method and u.
func NewRequest(method string, u *uri.URL) *Request {
	return &Request{URL: u, Method: method}
}

// Clone returns a deep copy of r. UserInfo values are shared.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}

	return &Request{
		URL:         r.URL.Clone(),
		Method:      r.Method,
		Header:      r.Header.Clone(),
		Body:        slices.Clone(r.Body),
		BodyFile:    r.BodyFile,
		UserInfo:    maps.Clone(r.UserInfo),
		Description: r.Description,
	}
}

// MethodOr returns the method, or def when none is set.
func (r *Request) MethodOr(def string) string {
	if r.Method == "" {
		return def
	}
	return r.Method
}

// HasBody reports whether a body buffer or body file is present.
func (r *Request) HasBody() bool {
	return r.Body != nil || r.BodyFile != ""
}

// String renders a multi-line transcript for diagnostics.
func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.MethodOr(http.MethodGet), r.URL.String())
	writeHeader(&b, r.Header)
	writeBody(&b, r.Body, r.BodyFile)
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteByte('\n')
	}
	return b.String()
}

// LogValue implements [slog.LogValuer].
func (r *Request) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("method", r.MethodOr(http.MethodGet)),
		slog.String("url", r.URL.String()),
		slog.Int("headers", r.Header.Len()),
	}
	if r.Body != nil {
		attrs = append(attrs, slog.Int("body_size", len(r.Body)))
	}
	if r.BodyFile != "" {
		attrs = append(attrs, slog.String("body_file", r.BodyFile))
	}
	if r.Description != "" {
		attrs = append(attrs, slog.String("description", r.Description))
	}
	return slog.GroupValue(attrs...)
}

func writeHeader(b *strings.Builder, h Header) {
	for name, values := range h.All() {
		for _, v := range values {
			b.WriteString(HeaderLine(name, v))
			b.WriteByte('\n')
		}
	}
}

func writeBody(b *strings.Builder, body []byte, file string) {
	switch {
	case body != nil:
		if utf8.Valid(body) {
			preview := body[:min(len(body), maxPreview)]
			fmt.Fprintf(b, "\n%s\n", preview)
			if len(preview) < len(body) {
				fmt.Fprintf(b, "... (%d bytes)\n", len(body))
			}
			return
		}
		fmt.Fprintf(b, "\n<binary, %d bytes>\n", len(body))
	case file != "":
		if info, err := os.Stat(file); err == nil {
			fmt.Fprintf(b, "\n<file %s, %d bytes>\n", file, info.Size())
			return
		}
		fmt.Fprintf(b, "\n<file %s>\n", file)
	}
}

// Task identifies the exchange a connector performs a request for.
type Task interface {
	ID() string
}
