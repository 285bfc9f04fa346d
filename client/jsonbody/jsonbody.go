// Package jsonbody fills a request body with a JSON document.
package jsonbody

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/codec"
	"github.com/adamwoolhether/apiconn/client/message"
)

// Option configures a [Builder].
type Option func(*Builder) error

// WithCodec replaces the default sonic codec.
func WithCodec(c codec.Codec) Option {
	return func(b *Builder) error {
		if c == nil {
			return errors.New("codec must not be nil")
		}
		b.codec = c
		return nil
	}
}

// Builder serializes a value into the request body. It only fills
// fields the request does not already carry.
type Builder struct {
	value any
	codec codec.Codec
}

// New returns a Builder for v.
func New(v any, optFns ...Option) (*Builder, error) {
	b := Builder{value: v, codec: codec.Default()}
	for _, opt := range optFns {
		if err := opt(&b); err != nil {
			return nil, fmt.Errorf("applying json option: %w", err)
		}
	}
	return &b, nil
}

// FillRequest defaults the method to POST and sets the body,
// Content-Type and Content-Length when absent.
func (b *Builder) FillRequest(_ context.Context, req *message.Request) (*message.Request, error) {
	out := req.Clone()
	if out.Method == "" {
		out.Method = http.MethodPost
	}

	if !out.HasBody() {
		body, err := b.codec.Marshal(b.value)
		if err != nil {
			return nil, fmt.Errorf("encoding json body: %w", err)
		}
		out.Body = body
	}

	out.Header.SetIfAbsent(message.HeaderContentType, message.ContentTypeCharset(message.TypeJSON, charset.UTF8))
	if out.Body != nil {
		out.Header.SetIfAbsent(message.HeaderContentLength, strconv.Itoa(len(out.Body)))
	}

	return out, nil
}

// Clean is a no-op: the body lives in memory.
func (b *Builder) Clean() {}
