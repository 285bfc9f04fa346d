package download

import (
	"errors"
	"hash"
)

// Option configures [Handle].
type Option func(*options) error

type options struct {
	verify       integrity
	progress     bool
	progressFn   ProgressFunc
	skipExisting bool
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.verify.hash = h
		opts.verify.checksum = expected
		return nil
	}
}

// WithProgress logs progress at most once per second via the logger
// supplied to Handle.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithProgressFunc reports every chunk written, then a final report
// with Received == 0 once the body is exhausted.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(opts *options) error {
		if fn == nil {
			return errors.New("progress func must not be nil")
		}
		opts.progressFn = fn
		return nil
	}
}

// WithSkipExisting makes Handle return immediately when destPath
// already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}
