// Package charset names the text encodings used to render request
// payloads and to read response bodies.
package charset

import (
	"errors"
	"fmt"
	"strings"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknown is returned by [Lookup] for labels with no known encoding.
var ErrUnknown = errors.New("unknown charset")

// Charset pairs an encoding with the name it is advertised under in
// Content-Type parameters.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the default charset.
var UTF8 = Charset{name: "UTF-8", enc: unicode.UTF8}

// Lookup resolves a charset label such as "utf-8", "latin1" or "Shift_JIS"
// using the WHATWG encoding index.
func Lookup(label string) (Charset, error) {
	label = strings.Trim(strings.TrimSpace(label), `"`)
	enc, name := htmlcharset.Lookup(label)
	if enc == nil {
		return Charset{}, fmt.Errorf("%w: %q", ErrUnknown, label)
	}

	if name == "utf-8" {
		return UTF8, nil
	}

	return Charset{name: strings.ToUpper(name), enc: enc}, nil
}

// MustLookup is like [Lookup] but panics on unknown labels.
func MustLookup(label string) Charset {
	c, err := Lookup(label)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the canonical, upper-case charset name.
func (c Charset) Name() string {
	if c.IsZero() {
		return UTF8.name
	}
	return c.name
}

// Encoding returns the underlying text encoding.
func (c Charset) Encoding() encoding.Encoding {
	if c.IsZero() {
		return UTF8.enc
	}
	return c.enc
}

// IsZero reports whether c is the zero Charset.
func (c Charset) IsZero() bool {
	return c.enc == nil
}

// IsUTF8 reports whether c renders text as UTF-8.
func (c Charset) IsUTF8() bool {
	return c.IsZero() || c.name == UTF8.name
}

// Encode renders s in the charset. Characters the charset cannot
// represent are replaced rather than reported.
func (c Charset) Encode(s string) []byte {
	if c.IsUTF8() {
		return []byte(s)
	}

	b, err := encoding.ReplaceUnsupported(c.enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return b
}

// Decode converts b from the charset into a UTF-8 string.
func (c Charset) Decode(b []byte) (string, error) {
	if c.IsUTF8() {
		return string(b), nil
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", c.name, err)
	}
	return string(out), nil
}

func (c Charset) String() string {
	return c.Name()
}
