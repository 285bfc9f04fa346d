package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/adamwoolhether/apiconn/client/message"
)

// ErrNoResponse is returned by accessors called before a response arrived.
var ErrNoResponse = errors.New("no response handled yet")

// Basic stores the final response.
type Basic struct {
	cfg config

	mu   sync.Mutex
	resp *message.Response
}

// NewBasic returns a Basic handler.
func NewBasic(optFns ...Option) (*Basic, error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return &Basic{cfg: cfg}, nil
}

// HandleResponse stores resp and runs the completion callback.
func (b *Basic) HandleResponse(_ context.Context, resp *message.Response) error {
	b.mu.Lock()
	b.resp = resp
	b.mu.Unlock()

	if b.cfg.onDone != nil {
		b.cfg.onDone(resp)
	}
	return nil
}

// Response returns the stored response, or nil.
func (b *Basic) Response() *message.Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resp
}

// Success reports a stored 2xx response without failure.
func (b *Basic) Success() bool {
	resp := b.Response()
	return resp != nil && resp.Success()
}

// Text returns the body decoded with the Content-Type charset. Without
// one the charset is detected from the content.
func (b *Basic) Text() (string, error) {
	resp := b.Response()
	if resp == nil {
		return "", ErrNoResponse
	}

	body, err := resp.Bytes()
	if err != nil {
		return "", err
	}

	text, err := toUTF8(resp.Header, body, true)
	if err != nil {
		return "", err
	}
	return string(text), nil
}
