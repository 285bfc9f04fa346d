package client

import (
	"context"

	"github.com/adamwoolhether/apiconn/client/message"
)

// RequestBuilder fills gaps in a request before it is sent. FillRequest
// returns a new request and must not overwrite fields already set.
// Clean releases resources the builder created for the task and runs
// exactly once per execution, whatever happened downstream.
type RequestBuilder interface {
	FillRequest(ctx context.Context, req *message.Request) (*message.Request, error)
	Clean()
}

// Connector performs one request. Perform never returns nil: failures
// are captured in [message.Response.Err]. Stop severs in-flight work and
// is idempotent.
type Connector interface {
	Perform(ctx context.Context, task message.Task, req *message.Request) *message.Response
	Stop()
}

// ResponseHandler consumes the final response of a task. Its error is
// logged and never retried.
type ResponseHandler interface {
	HandleResponse(ctx context.Context, resp *message.Response) error
}

// HandlerFunc adapts a function to [ResponseHandler].
type HandlerFunc func(ctx context.Context, resp *message.Response) error

// HandleResponse calls f.
func (f HandlerFunc) HandleResponse(ctx context.Context, resp *message.Response) error {
	return f(ctx, resp)
}
