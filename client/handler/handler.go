// Package handler provides response handlers that store the final
// response of a task and decode its body.
package handler

import (
	"errors"
	"fmt"

	"github.com/saintfish/chardet"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/codec"
	"github.com/adamwoolhether/apiconn/client/message"
)

// Option configures a handler.
type Option func(*config) error

type config struct {
	codec  codec.Codec
	onDone func(*message.Response)
}

// WithCodec replaces the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) error {
		if c == nil {
			return errors.New("codec must not be nil")
		}
		cfg.codec = c
		return nil
	}
}

// OnComplete registers fn to run after the response is stored.
func OnComplete(fn func(*message.Response)) Option {
	return func(cfg *config) error {
		cfg.onDone = fn
		return nil
	}
}

func applyOptions(optFns []Option) (config, error) {
	cfg := config{codec: codec.Default()}
	for _, opt := range optFns {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("applying handler option: %w", err)
		}
	}
	return cfg, nil
}

// responseCharset returns the charset named by the Content-Type header.
// Otherwise it guesses from body when sniff is set, or assumes UTF-8.
func responseCharset(h message.Header, body []byte, sniff bool) charset.Charset {
	if _, label := message.MediaType(h.Get(message.HeaderContentType)); label != "" {
		if cs, err := charset.Lookup(label); err == nil {
			return cs
		}
	}
	if !sniff {
		return charset.UTF8
	}
	return detect(body)
}

func detect(body []byte) charset.Charset {
	if len(body) == 0 {
		return charset.UTF8
	}

	res, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || res == nil {
		return charset.UTF8
	}
	cs, err := charset.Lookup(res.Charset)
	if err != nil {
		return charset.UTF8
	}
	return cs
}

// toUTF8 transcodes body from the response charset.
func toUTF8(h message.Header, body []byte, sniff bool) ([]byte, error) {
	cs := responseCharset(h, body, sniff)
	if cs.IsUTF8() {
		return body, nil
	}

	s, err := cs.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", cs, err)
	}
	return []byte(s), nil
}
