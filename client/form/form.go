// Package form fills a request with application/x-www-form-urlencoded
// fields, either as the URL query or as the body.
package form

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/percent"
)

// Option configures a [Builder].
type Option func(*Builder) error

// InBody places the fields in the request body instead of the query.
func InBody() Option {
	return func(b *Builder) error {
		b.inBody = true
		return nil
	}
}

// WithEncoder sets the percent encoder, and with it the charset
// advertised in the Content-Type.
func WithEncoder(enc *percent.Encoder) Option {
	return func(b *Builder) error {
		if enc == nil {
			return errors.New("encoder must not be nil")
		}
		b.encoder = enc
		return nil
	}
}

// Builder encodes form fields. Values are rendered in their display form.
type Builder struct {
	fields  []message.Field
	inBody  bool
	encoder *percent.Encoder
}

// New returns a Builder for payload, which may be a [message.Fielder],
// a []message.Field or a string-keyed map.
func New(payload any, optFns ...Option) (*Builder, error) {
	fields, err := message.FieldsOf(payload)
	if err != nil {
		return nil, err
	}

	b := Builder{fields: fields, encoder: percent.Default()}
	for _, opt := range optFns {
		if err := opt(&b); err != nil {
			return nil, fmt.Errorf("applying form option: %w", err)
		}
	}
	return &b, nil
}

// Encode renders the fields as key1=value1&key2=value2.
func (b *Builder) Encode() string {
	pairs := make([]percent.Pair, len(b.fields))
	for i, f := range b.fields {
		pairs[i] = percent.Pair{Key: f.Name, Value: f.Text()}
	}
	return b.encoder.EncodePairs(pairs)
}

// FillRequest sets the query (method defaulting to GET) or the body
// (method defaulting to POST), leaving fields already present alone.
func (b *Builder) FillRequest(_ context.Context, req *message.Request) (*message.Request, error) {
	out := req.Clone()

	if !b.inBody {
		if out.Method == "" {
			out.Method = http.MethodGet
		}
		if out.URL != nil && out.URL.RawQuery == "" {
			out.URL.RawQuery = b.Encode()
		}
		return out, nil
	}

	if out.Method == "" {
		out.Method = http.MethodPost
	}
	if !out.HasBody() {
		out.Body = b.encoder.Charset().Encode(b.Encode())
	}
	out.Header.SetIfAbsent(message.HeaderContentType, message.ContentTypeCharset(message.TypeFormURLEncoded, b.encoder.Charset()))
	if out.Body != nil {
		out.Header.SetIfAbsent(message.HeaderContentLength, strconv.Itoa(len(out.Body)))
	}

	return out, nil
}

// Clean is a no-op: the encoded form lives in memory.
func (b *Builder) Clean() {}
