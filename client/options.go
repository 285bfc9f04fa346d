package client

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/message"
)

// Option configures a [Session].
type Option func(*options) error

type options struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	registerer    prometheus.Registerer
	header        message.Header
	charset       *charset.Charset
	connectorOpts []connector.Option
}

// WithLogger injects a custom [slog.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer records a span for every task execution.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// WithMetrics registers task metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		o.registerer = reg
		return nil
	}
}

// WithDefaultHeaders sets headers merged into every request. Values a
// request already carries come first.
func WithDefaultHeaders(h message.Header) Option {
	return func(o *options) error {
		o.header = h.Clone()
		return nil
	}
}

// WithCharset sets the session charset used by encoders and multipart
// bodies that do not configure one.
func WithCharset(cs charset.Charset) Option {
	return func(o *options) error {
		if cs.IsZero() {
			return errors.New("charset must not be zero")
		}
		o.charset = &cs
		return nil
	}
}

// WithConnectorOptions adds options to every connector the session creates.
func WithConnectorOptions(opts ...connector.Option) Option {
	return func(o *options) error {
		o.connectorOpts = append(o.connectorOpts, opts...)
		return nil
	}
}

// TaskOption configures a [Task].
type TaskOption func(*Task) error

// WithBuilder sets the request builder.
func WithBuilder(b RequestBuilder) TaskOption {
	return func(t *Task) error {
		t.builder = b
		return nil
	}
}

// WithConnector replaces the session's default connector.
func WithConnector(c Connector) TaskOption {
	return func(t *Task) error {
		if c == nil {
			return errors.New("connector must not be nil")
		}
		t.conn = c
		return nil
	}
}

// WithHandler sets the response handler.
func WithHandler(h ResponseHandler) TaskOption {
	return func(t *Task) error {
		t.handler = h
		return nil
	}
}
