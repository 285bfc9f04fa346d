package client

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/message"
)

// Session owns the registry of active tasks and the configuration
// shared by them. Registry and settings changes are commands consumed
// by a single goroutine; task I/O runs concurrently, one goroutine per
// task, without a concurrency bound.
type Session struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *metrics
	header        message.Header
	charset       *charset.Charset
	connectorOpts []connector.Option

	cmds   chan command
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
	units  sync.WaitGroup
}

// NewSession starts a session.
func NewSession(optFns ...Option) (*Session, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying session option: %w", err)
		}
	}

	s := Session{
		logger:        opts.logger,
		tracer:        opts.tracer,
		metrics:       newMetrics(opts.registerer),
		header:        opts.header,
		charset:       opts.charset,
		connectorOpts: opts.connectorOpts,
		cmds:          make(chan command),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	go s.run()

	return &s, nil
}

// registry is owned by the consumer goroutine.
type registry struct {
	session  *Session
	tasks    map[*Task]uint64
	seq      uint64
	settings map[reflect.Type]any
}

type command interface {
	apply(r *registry)
}

type addTask struct {
	task  *Task
	reply chan error
}

func (c addTask) apply(r *registry) {
	if r.session.closed.Load() {
		c.reply <- ErrSessionClosed
		return
	}
	if _, ok := r.tasks[c.task]; ok {
		c.reply <- nil
		return
	}

	r.seq++
	r.tasks[c.task] = r.seq
	r.session.units.Add(1)
	go r.session.execute(c.task)

	c.reply <- nil
}

type removeTask struct {
	task  *Task
	reply chan struct{}
}

func (c removeTask) apply(r *registry) {
	delete(r.tasks, c.task)
	c.reply <- struct{}{}
}

type listTasks struct {
	reply chan []*Task
}

func (c listTasks) apply(r *registry) {
	tasks := make([]*Task, 0, len(r.tasks))
	for t := range r.tasks {
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *Task) int {
		return cmp.Compare(r.tasks[a], r.tasks[b])
	})
	c.reply <- tasks
}

type storeSetting struct {
	key   reflect.Type
	value any
	reply chan struct{}
}

func (c storeSetting) apply(r *registry) {
	r.settings[c.key] = c.value
	c.reply <- struct{}{}
}

type loadSetting struct {
	key   reflect.Type
	reply chan any
}

func (c loadSetting) apply(r *registry) {
	c.reply <- r.settings[c.key]
}

func (s *Session) run() {
	defer close(s.done)

	r := registry{
		session:  s,
		tasks:    make(map[*Task]uint64),
		settings: make(map[reflect.Type]any),
	}

	for {
		select {
		case cmd := <-s.cmds:
			cmd.apply(&r)
		case <-s.quit:
			return
		}
	}
}

// submit hands cmd to the consumer. Once submit returns nil the command
// is applied and its reply is sent.
func (s *Session) submit(cmd command) error {
	select {
	case s.cmds <- cmd:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) add(t *Task) error {
	reply := make(chan error, 1)
	if err := s.submit(addTask{task: t, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

func (s *Session) remove(t *Task) {
	reply := make(chan struct{}, 1)
	if err := s.submit(removeTask{task: t, reply: reply}); err != nil {
		return
	}
	<-reply
}

// Active returns the registered tasks in start order.
func (s *Session) Active() []*Task {
	reply := make(chan []*Task, 1)
	if err := s.submit(listTasks{reply: reply}); err != nil {
		return nil
	}
	return <-reply
}

// Len returns the number of registered tasks.
func (s *Session) Len() int {
	return len(s.Active())
}

// StopAll stops every registered task.
func (s *Session) StopAll() {
	for _, t := range s.Active() {
		t.Stop()
	}
}

// Close rejects new tasks, stops the active ones, waits for their
// execution to end and then stops the consumer. Waiting is bounded by
// ctx; the consumer is stopped either way.
func (s *Session) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Adds queued before this point are in the snapshot, later ones
	// observe closed.
	s.StopAll()

	waited := make(chan struct{})
	go func() {
		s.units.Wait()
		close(waited)
	}()

	var err error
	select {
	case <-waited:
	case <-ctx.Done():
		err = fmt.Errorf("waiting for tasks: %w", ctx.Err())
	}

	close(s.quit)
	<-s.done

	return err
}

// StoreSettings stores v as the session layer for settings of type T.
func StoreSettings[T any](s *Session, v T) error {
	reply := make(chan struct{}, 1)
	if err := s.submit(storeSetting{key: reflect.TypeFor[T](), value: v, reply: reply}); err != nil {
		return err
	}
	<-reply
	return nil
}

// LoadSettings returns the session layer for settings of type T.
func LoadSettings[T any](s *Session) (T, bool) {
	var zero T

	reply := make(chan any, 1)
	if err := s.submit(loadSetting{key: reflect.TypeFor[T](), reply: reply}); err != nil {
		return zero, false
	}

	v, ok := (<-reply).(T)
	if !ok {
		return zero, false
	}
	return v, true
}
