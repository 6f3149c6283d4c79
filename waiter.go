package wsema

import (
	"context"
	"sync/atomic"

	"github.com/llxisdsh/wsema/internal/opt"
)

type waiterState uint32

const (
	waiterPending waiterState = iota
	waiterGranted
	waiterPoisoned
	waiterCancelled
)

// waiterKey orders waiters by arrival. Keys only grow, so a queue is
// always sorted by key.
type waiterKey uint64

// parker suspends exactly one acquirer and resumes it once.
type parker interface {
	park(ctx context.Context) error
	unpark()
}

// semaParker parks on the runtime semaphore. It cannot be interrupted and
// is only used for contexts that are never done.
type semaParker struct {
	sema opt.Sema
}

func (p *semaParker) park(context.Context) error {
	p.sema.Acquire()
	return nil
}

func (p *semaParker) unpark() {
	p.sema.Release()
}

type chanParker struct {
	ch chan struct{}
}

func (p *chanParker) park(ctx context.Context) error {
	select {
	case <-p.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *chanParker) unpark() {
	close(p.ch)
}

// waiter is one suspended Acquire.
// key and queue membership are guarded by the owning semaphore's lock.
type waiter struct {
	n     uint64
	key   waiterKey
	state atomic.Uint32
	p     parker
	sp    semaParker
}

func newWaiter(ctx context.Context, n uint64) *waiter {
	w := &waiter{n: n}
	if ctx.Done() == nil {
		w.p = &w.sp
	} else {
		w.p = &chanParker{ch: make(chan struct{})}
	}
	return w
}

// resolve must be called once, by whoever removes w from its queue.
func (w *waiter) resolve(s waiterState) {
	w.state.Store(uint32(s))
	if s != waiterCancelled {
		w.p.unpark()
	}
}

func (w *waiter) resolved() waiterState {
	return waiterState(w.state.Load())
}

// wait parks until w is resolved. If ctx ends first, cancel is asked to
// pull w out of its queue; when that fails the waiter was resolved
// concurrently and the resolution stands.
func (w *waiter) wait(ctx context.Context, cancel func(*waiter) bool) error {
	if err := w.p.park(ctx); err != nil && cancel(w) {
		return err
	}
	if w.resolved() == waiterGranted {
		return nil
	}
	return ErrPoisoned
}
