package client_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/uri"
)

// fakeConnector returns resp for every request. With block set it waits
// for release or cancellation first. finished runs once the response is
// ready, right before Perform returns it.
type fakeConnector struct {
	resp     *message.Response
	block    bool
	finished func()
	entered chan struct{}
	release chan struct{}

	performs atomic.Int32
	stops    atomic.Int32

	mu   sync.Mutex
	seen *message.Request
}

func newFakeConnector(resp *message.Response) *fakeConnector {
	return &fakeConnector{
		resp:    resp,
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (f *fakeConnector) Perform(ctx context.Context, _ message.Task, req *message.Request) *message.Response {
	f.performs.Add(1)
	f.mu.Lock()
	f.seen = req
	f.mu.Unlock()
	f.entered <- struct{}{}

	if f.block {
		select {
		case <-f.release:
		case <-ctx.Done():
			return message.Failure(req.URL.String(), ctx.Err())
		}
	}

	resp := *f.resp
	if f.finished != nil {
		f.finished()
	}
	return &resp
}

func (f *fakeConnector) Stop() {
	f.stops.Add(1)
}

func (f *fakeConnector) request() *message.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen
}

// fakeBuilder counts calls and optionally fails FillRequest. With empty
// set it returns neither a request nor an error.
type fakeBuilder struct {
	fail   bool
	empty  bool
	fills  atomic.Int32
	cleans atomic.Int32
}

func (b *fakeBuilder) FillRequest(_ context.Context, req *message.Request) (*message.Request, error) {
	b.fills.Add(1)
	if b.fail {
		return nil, errors.New("no payload")
	}
	if b.empty {
		return nil, nil
	}
	out := req.Clone()
	out.Body = []byte("filled")
	return out, nil
}

func (b *fakeBuilder) Clean() {
	b.cleans.Add(1)
}

// recorder is a ResponseHandler keeping the responses it received.
type recorder struct {
	mu    sync.Mutex
	resps []*message.Response
}

func (r *recorder) HandleResponse(_ context.Context, resp *message.Response) error {
	r.mu.Lock()
	r.resps = append(r.resps, resp)
	r.mu.Unlock()
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.resps)
}

func testRequest() *message.Request {
	u := uri.New(uri.Settings{})
	u.Host = "example.com"
	return message.NewRequest("GET", u.Join("items"))
}
