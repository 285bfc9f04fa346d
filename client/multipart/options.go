package multipart

import (
	"errors"
	"log/slog"
	"strings"
)

// Option configures [Build] and [New].
type Option func(*options) error

type options struct {
	boundary   string
	outputFile string
	settings   Settings
	logger     *slog.Logger
}

// WithBoundary uses b instead of a generated boundary.
func WithBoundary(b string) Option {
	return func(o *options) error {
		if b == "" || len(b) > 70 || strings.ContainsAny(b, "\r\n") {
			return errors.New("boundary must be 1 to 70 characters without line breaks")
		}
		o.boundary = b
		return nil
	}
}

// WithSettings sets the settings layer, resolved over [Defaults].
func WithSettings(s Settings) Option {
	return func(o *options) error {
		o.settings = s
		return nil
	}
}

// WithOutputFile streams the body to path, overwriting it.
func WithOutputFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("output file must not be empty")
		}
		o.outputFile = path
		return nil
	}
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
