package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/message"
)

var (
	// ErrNoURL is returned when creating a task for a request without a URL.
	ErrNoURL = errors.New("request url must not be nil")

	// ErrNoResponse is captured when a connector breaks its contract
	// and returns no response.
	ErrNoResponse = errors.New("connector returned no response")

	// ErrNoRequest is captured when a request builder returns neither a
	// request nor an error.
	ErrNoRequest = errors.New("request builder returned no request")
)

// State is the lifecycle position of a [Task].
type State int32

const (
	StateCreated State = iota
	StateEnqueued
	StateRunning
	// StateCompleted covers both successful exchanges and captured
	// failures.
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateEnqueued:
		return "enqueued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Task is one request/response exchange bound to a [Session].
type Task struct {
	id      string
	session *Session
	req     *message.Request
	builder RequestBuilder
	conn    Connector
	handler ResponseHandler

	state atomic.Int32

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	stopped   bool
	finishing bool

	resp *message.Response
	done chan struct{}
}

// NewTask returns a task for req. Without [WithConnector] the task gets
// a connector built from the session settings.
func (s *Session) NewTask(req *message.Request, optFns ...TaskOption) (*Task, error) {
	if req == nil || req.URL == nil {
		return nil, ErrNoURL
	}

	t := Task{
		id:      uuid.NewString(),
		session: s,
		req:     req.Clone(),
		done:    make(chan struct{}),
	}
	for _, opt := range optFns {
		if err := opt(&t); err != nil {
			return nil, fmt.Errorf("applying task option: %w", err)
		}
	}

	if t.conn == nil {
		c, err := s.Connector(connector.Settings{})
		if err != nil {
			return nil, fmt.Errorf("creating connector: %w", err)
		}
		t.conn = c
	}

	return &t, nil
}

// ID returns the task identifier.
func (t *Task) ID() string {
	return t.id
}

// State returns the current state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Request returns a copy of the request the task was created with.
func (t *Task) Request() *message.Request {
	return t.req.Clone()
}

// Done is closed once the task reached a terminal state.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Response returns the final response, or nil before the task is done.
func (t *Task) Response() *message.Response {
	select {
	case <-t.done:
		return t.resp
	default:
		return nil
	}
}

// Wait blocks until the task is done or ctx ends.
func (t *Task) Wait(ctx context.Context) (*message.Response, error) {
	select {
	case <-t.done:
		return t.resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start registers the task with its session and launches its
// execution. Cancelling ctx stops the task. Starting a task that was
// already started, stopped or finished does nothing.
func (t *Task) Start(ctx context.Context) error {
	if !t.state.CompareAndSwap(int32(StateCreated), int32(StateEnqueued)) {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.ctx, t.cancel = ctx, cancel
	stopped := t.stopped
	t.mu.Unlock()

	if stopped {
		cancel()
	}

	if err := t.session.add(t); err != nil {
		cancel()
		t.finish(message.Failure(t.req.URL.String(), err), StateCancelled)
		return err
	}

	return nil
}

// Stop cancels the task. The connector is asked to sever in-flight work
// and the task leaves the registry. Stopping a task whose exchange has
// already completed does nothing.
func (t *Task) Stop() {
	if t.state.CompareAndSwap(int32(StateCreated), int32(StateCancelled)) {
		t.finish(message.Failure(t.req.URL.String(), ErrTaskCancelled), StateCancelled)
		return
	}

	t.mu.Lock()
	if t.stopped || t.finishing {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.conn.Stop()
	t.session.remove(t)
}

func (t *Task) finish(resp *message.Response, state State) {
	t.resp = resp
	t.state.Store(int32(state))
	close(t.done)
}

// execute is the task's execution unit.
func (s *Session) execute(t *Task) {
	defer s.units.Done()

	t.state.CompareAndSwap(int32(StateEnqueued), int32(StateRunning))
	began := time.Now()
	s.metrics.begin()

	ctx, span := s.tracer.Start(t.ctx, "apiconn.task", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", t.id),
		attribute.String("http.method", t.req.Method),
		attribute.String("url.full", t.req.URL.String()),
	)

	logger := s.logger.With("task", t.id)

	resp, cancelled := t.exchange(ctx, logger, s.header)

	if t.handler != nil {
		if err := t.handler.HandleResponse(context.WithoutCancel(ctx), resp); err != nil {
			logger.Error("response handler failed", "error", err)
			span.RecordError(err)
		}
	}

	state, outcome := StateCompleted, outcomeSuccess
	switch {
	case cancelled:
		state, outcome = StateCancelled, outcomeCancelled
	case !resp.Success():
		outcome = outcomeFailure
	}

	if resp.HasStatus() {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if resp.Err != nil {
		span.RecordError(resp.Err)
		span.SetStatus(codes.Error, resp.Err.Error())
	}

	s.remove(t)
	t.cancel()
	s.metrics.end(outcome, time.Since(began))

	logger.Debug("task finished", "state", state, "elapsed", time.Since(began).Round(time.Millisecond))

	t.finish(resp, state)
}

// exchange merges default headers, runs the builder and the connector,
// and always cleans the builder before returning.
func (t *Task) exchange(ctx context.Context, logger *slog.Logger, defaults message.Header) (*message.Response, bool) {
	req := t.req.Clone()
	req.Header = req.Header.Merge(defaults)
	origin := req.URL.String()

	if t.builder != nil {
		defer t.builder.Clean()
	}

	var resp *message.Response
	if t.builder != nil && ctx.Err() == nil {
		filled, err := t.builder.FillRequest(ctx, req)
		switch {
		case err != nil:
			resp = message.Failure(origin, fmt.Errorf("%w: %w", ErrBuildRequest, err))
		case filled == nil:
			resp = message.Failure(origin, fmt.Errorf("%w: %w", ErrBuildRequest, ErrNoRequest))
		default:
			req = filled
		}
	}

	logger.Debug("task request", "request", req)

	var performed bool
	if resp == nil && ctx.Err() == nil {
		performed = true
		resp = t.conn.Perform(ctx, t, req)
		if resp == nil {
			resp = message.Failure(origin, ErrNoResponse)
		}
	}

	t.mu.Lock()
	t.finishing = true
	interrupted := t.stopped || ctx.Err() != nil
	t.mu.Unlock()

	// A response the transport produced is final unless the transport
	// itself reports the interruption.
	cancelled := interrupted
	if performed {
		cancelled = interrupted && (errors.Is(resp.Err, context.Canceled) || errors.Is(resp.Err, connector.ErrStopped))
	}

	if cancelled {
		resp = message.Failure(origin, errors.Join(ErrTaskCancelled, context.Canceled))
		resp.UserInfo = req.UserInfo
	}

	logger.Debug("task response", "response", resp)

	return resp, cancelled
}
