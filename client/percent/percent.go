// Package percent implements reversible RFC 3986 percent-encoding over a
// configurable charset and unreserved character set.
package percent

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adamwoolhether/apiconn/client/charset"
)

// ErrMalformedEscape is wrapped by [DecodeError] when a '%' is not
// followed by two hex digits.
var ErrMalformedEscape = errors.New("malformed percent escape")

// DecodeError reports where decoding failed.
type DecodeError struct {
	Offset int
	Input  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset %d in %q", e.Err, e.Offset, e.Input)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Pair is a single key/value entry of an ordered form.
type Pair struct {
	Key   string
	Value string
}

// Encoder percent-encodes and decodes text. It is safe for concurrent use.
type Encoder struct {
	charset     charset.Charset
	unreserved  [utf8.RuneSelf]bool
	spaceAsPlus bool
	hex         string
}

// New returns an Encoder for s layered over the library defaults.
func New(s Settings) *Encoder {
	s = Resolve(s, Settings{})

	e := Encoder{
		charset:     *s.Charset,
		spaceAsPlus: *s.SpaceAsPlus,
		hex:         "0123456789ABCDEF",
	}
	if *s.LowerHex {
		e.hex = "0123456789abcdef"
	}
	for i := 0; i < len(*s.Unreserved); i++ {
		if c := (*s.Unreserved)[i]; c < utf8.RuneSelf {
			e.unreserved[c] = true
		}
	}

	return &e
}

// Default returns an Encoder using only the library defaults.
func Default() *Encoder {
	return New(Settings{})
}

// Charset returns the charset text is rendered in before escaping.
func (e *Encoder) Charset() charset.Charset {
	return e.charset
}

// Encode percent-encodes text. It never fails: characters the charset
// cannot represent are replaced by the charset's substitute.
func (e *Encoder) Encode(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		rendered := e.charset.Encode(string(r))

		if r < utf8.RuneSelf && len(rendered) == 1 && rendered[0] == byte(r) && r >= 0x20 && r <= 0x7E {
			c := rendered[0]
			switch {
			case e.spaceAsPlus && c == ' ':
				b.WriteByte('+')
				continue
			case e.spaceAsPlus && c == '+':
				// A literal plus would read back as a space.
			case e.unreserved[c]:
				b.WriteByte(c)
				continue
			}
		}

		for _, c := range rendered {
			b.WriteByte('%')
			b.WriteByte(e.hex[c>>4])
			b.WriteByte(e.hex[c&0x0F])
		}
	}

	return b.String()
}

// Decode reverses [Encoder.Encode]. Consecutive escapes are collected
// into a single byte run before charset decoding so that multi-byte
// characters split across several triplets decode correctly.
func (e *Encoder) Decode(text string) (string, error) {
	var (
		out strings.Builder
		run []byte
	)

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		s, err := e.charset.Decode(run)
		if err != nil {
			return err
		}
		out.WriteString(s)
		run = run[:0]
		return nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '%' {
			if i+2 >= len(text) {
				return "", &DecodeError{Offset: i, Input: text, Err: ErrMalformedEscape}
			}
			hi, ok1 := unhex(text[i+1])
			lo, ok2 := unhex(text[i+2])
			if !ok1 || !ok2 {
				return "", &DecodeError{Offset: i, Input: text, Err: ErrMalformedEscape}
			}
			run = append(run, hi<<4|lo)
			i += 2
			continue
		}

		if err := flush(); err != nil {
			return "", &DecodeError{Offset: i, Input: text, Err: err}
		}

		if c == '+' && e.spaceAsPlus {
			out.WriteByte(' ')
			continue
		}
		out.WriteByte(c)
	}

	if err := flush(); err != nil {
		return "", &DecodeError{Offset: len(text), Input: text, Err: err}
	}

	return out.String(), nil
}

// EncodePairs serializes pairs as key1=value1&key2=value2, preserving order.
func (e *Encoder) EncodePairs(pairs []Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(e.Encode(p.Key))
		b.WriteByte('=')
		b.WriteString(e.Encode(p.Value))
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
