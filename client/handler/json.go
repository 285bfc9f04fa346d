package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/adamwoolhether/apiconn/client/codec"
	"github.com/adamwoolhether/apiconn/client/message"
)

// JSON decodes a response body into S for 2xx responses and into F
// otherwise. Decode failures are recorded, never returned.
type JSON[S, F any] struct {
	cfg config

	mu        sync.Mutex
	resp      *message.Response
	raw       []byte
	success   *S
	failure   *F
	decodeErr error
}

// NewJSON returns a JSON handler.
func NewJSON[S, F any](optFns ...Option) (*JSON[S, F], error) {
	cfg, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return &JSON[S, F]{cfg: cfg}, nil
}

// HandleResponse stores resp and decodes its body when one is present.
func (j *JSON[S, F]) HandleResponse(_ context.Context, resp *message.Response) error {
	raw, succ, fail, decodeErr := decode[S, F](j.cfg.codec, resp)

	j.mu.Lock()
	j.resp = resp
	j.raw = raw
	j.success = succ
	j.failure = fail
	j.decodeErr = decodeErr
	j.mu.Unlock()

	if j.cfg.onDone != nil {
		j.cfg.onDone(resp)
	}
	return nil
}

func decode[S, F any](c codec.Codec, resp *message.Response) ([]byte, *S, *F, error) {
	body, err := resp.Bytes()
	switch {
	case errors.Is(err, message.ErrNoBody):
		return nil, nil, nil, nil
	case err != nil:
		return nil, nil, nil, err
	}

	raw, err := toUTF8(resp.Header, body, false)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(raw) == 0 {
		return raw, nil, nil, nil
	}

	if resp.Success() {
		var s S
		if err := c.Unmarshal(raw, &s); err != nil {
			return raw, nil, nil, fmt.Errorf("decoding success body: %w", err)
		}
		return raw, &s, nil, nil
	}

	var f F
	if err := c.Unmarshal(raw, &f); err != nil {
		return raw, nil, nil, fmt.Errorf("decoding failure body: %w", err)
	}
	return raw, nil, &f, nil
}

// Response returns the stored response, or nil.
func (j *JSON[S, F]) Response() *message.Response {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.resp
}

// Success reports a stored 2xx response without failure.
func (j *JSON[S, F]) Success() bool {
	resp := j.Response()
	return resp != nil && resp.Success()
}

// Value returns the decoded success body.
func (j *JSON[S, F]) Value() (S, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.success == nil {
		var zero S
		return zero, false
	}
	return *j.success, true
}

// Failure returns the decoded failure body.
func (j *JSON[S, F]) Failure() (F, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.failure == nil {
		var zero F
		return zero, false
	}
	return *j.failure, true
}

// DecodeErr returns the error captured while reading or decoding the body.
func (j *JSON[S, F]) DecodeErr() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.decodeErr
}

// Lookup extracts a value from the raw body by gjson path.
func (j *JSON[S, F]) Lookup(path string) gjson.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return codec.Lookup(j.raw, path)
}
