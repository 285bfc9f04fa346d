package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Group starts tasks with a concurrency limit and collects their
// failures. Sessions never bound concurrency themselves.
type Group struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewGroup creates a Group. If maxConcurrent <= 0, concurrency is
// unlimited.
func NewGroup(maxConcurrent int) *Group {
	g := &Group{}
	if maxConcurrent > 0 {
		g.sem = make(chan struct{}, maxConcurrent)
	}
	return g
}

// Go starts t once a slot is free and waits for it in the background.
// A captured response failure is recorded for [Group.Wait].
func (g *Group) Go(ctx context.Context, t *Task) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		if g.sem != nil {
			select {
			case g.sem <- struct{}{}:
				defer func() {
					<-g.sem
				}()
			case <-ctx.Done():
				t.Stop()
				g.recordErr(ctx.Err())
				return
			}
		}

		if g.shutdown.Load() {
			t.Stop()
			g.recordErr(ErrGroupShutdown)
			return
		}

		if err := t.Start(ctx); err != nil {
			g.recordErr(err)
			return
		}

		resp, err := t.Wait(ctx)
		if err != nil {
			t.Stop()
			g.recordErr(err)
			return
		}
		if resp.Err != nil {
			g.recordErr(fmt.Errorf("task %s: %w", t.ID(), resp.Err))
		}
	}()
}

// Wait blocks until all tasks in the group complete.
// Returns all errors joined via errors.Join.
func (g *Group) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}

// Shutdown prevents tasks still waiting for a slot from starting.
func (g *Group) Shutdown() {
	g.shutdown.Store(true)
}

func (g *Group) recordErr(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}
