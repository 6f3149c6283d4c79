package wsema

import (
	"context"
	"sync/atomic"
)

// Weighted is the contract shared by every semaphore backend in this
// package. All implementations grant waiters in strict FIFO order and stop
// at the first waiter that cannot be satisfied.
//
// The interface is sealed; use New, NewAtomic or NewWeighted.
type Weighted interface {
	// TryAcquire takes n permits without blocking. It reports false when
	// the permits are not available right now or other waiters are queued,
	// and ErrPoisoned once the semaphore is poisoned.
	TryAcquire(n uint64) (bool, error)

	// Acquire takes n permits, blocking until they are granted, the
	// semaphore is poisoned (ErrPoisoned) or ctx is done (ctx.Err()).
	Acquire(ctx context.Context, n uint64) (*Guard, error)

	// Release returns n permits and wakes the waiters that now fit.
	// It panics if the count would exceed the backend maximum.
	Release(n uint64)

	// Poison fails every queued and future acquire. It is idempotent.
	Poison()

	// Poisoned reports whether the semaphore is poisoned.
	Poisoned() bool

	// Available returns the permits that are currently free.
	Available() uint64

	// Waiters returns the number of queued acquires.
	Waiters() int

	// Releaser returns a new release-capable handle. Closing the last
	// handle poisons the semaphore.
	Releaser() *Releaser

	handles() *handleCount
}

// handleCount tracks the live Releasers of one semaphore.
type handleCount struct {
	n atomic.Int64
}

func (h *handleCount) retain() {
	h.n.Add(1)
}

// drop reports whether the last handle went away.
func (h *handleCount) drop() bool {
	return h.n.Add(-1) == 0
}

var (
	_ Weighted = (*Semaphore)(nil)
	_ Weighted = (*AtomicSemaphore)(nil)
)
