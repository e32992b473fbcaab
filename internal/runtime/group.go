// Package runtime provides the goroutine-group supervisor the client's
// background loops run under: the symbol-cache refresh loop, the WebSocket
// read loop(s), the listen-key renewal loop, and the order book
// synchronisers all need to live and die together. The REST pipeline's
// dispatch and keep-alive goroutines are started by Pipeline.Connect and
// are not part of the group.
package runtime

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"
)

// Group runs a set of long-running tasks together: every task receives a
// shared, cancellable context, and the first task to return an error (or
// panic) cancels the rest. Wait re-panics if any task panicked, the same
// surfacing conc.WaitGroup gives a single goroutine.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu       sync.Mutex
	firstErr error
}

// New creates a Group whose tasks are cancelled when parent is cancelled.
func New(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel}
}

// Context returns the group's shared context.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go starts fn in its own goroutine. fn should run until ctx is
// cancelled or it encounters an unrecoverable error.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				g.cancel()
				panic(r)
			}
		}()
		if err := fn(g.ctx); err != nil {
			g.fail(err)
		}
	})
}

func (g *Group) fail(err error) {
	g.mu.Lock()
	if g.firstErr == nil {
		g.firstErr = err
	}
	g.mu.Unlock()
	g.cancel()
}

// Cancel stops every task in the group without waiting for them to exit.
func (g *Group) Cancel() {
	g.cancel()
}

// Wait blocks until all tasks have returned, then returns the first
// non-nil error any of them reported (ignoring context.Canceled, which
// every task reports once Cancel/Wait tears the group down).
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.firstErr == context.Canceled {
		return nil
	}
	return g.firstErr
}
