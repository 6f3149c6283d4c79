package wsema

import (
	"sync/atomic"
)

// Permit is a successful acquisition. Release gives the permits back
// exactly once; Forget keeps them out of the semaphore for good.
//
// Guard borrows the semaphore it was acquired from. OwnedGuard also owns a
// Releaser handle, which keeps the semaphore from being poisoned by handle
// loss for as long as the permits are held.
type Permit interface {
	// Amount returns the permits still held, or 0 once released or
	// forgotten.
	Amount() uint64
	// Release returns the held permits. Calls after the first are no-ops.
	Release()
	// Forget disarms Release and returns the amount it would have
	// released, or 0 if the permit was already spent.
	Forget() uint64
}

type releaser interface {
	Release(n uint64)
}

// Guard holds permits acquired from a semaphore.
//
// The usual pattern is:
//
//	g, err := sem.Acquire(ctx, 4)
//	if err != nil {
//		return err
//	}
//	defer g.Release()
//
// Release and Forget may race with each other; exactly one of them wins.
// Split racing with either moves permits that the winner then never sees.
type Guard struct {
	sem  releaser
	n    atomic.Uint64
	done atomic.Bool
}

func newGuard(sem releaser, n uint64) *Guard {
	g := &Guard{sem: sem}
	g.n.Store(n)
	return g
}

func (g *Guard) Amount() uint64 {
	if g == nil || g.done.Load() {
		return 0
	}
	return g.n.Load()
}

// Release returns the held permits to the semaphore. It is safe to call on
// a nil Guard and after the semaphore has been poisoned.
func (g *Guard) Release() {
	if g == nil || !g.done.CompareAndSwap(false, true) {
		return
	}
	if n := g.n.Swap(0); n != 0 {
		g.sem.Release(n)
	}
}

func (g *Guard) Forget() uint64 {
	if g == nil || !g.done.CompareAndSwap(false, true) {
		return 0
	}
	return g.n.Swap(0)
}

// Split moves n of the held permits into a new Guard on the same
// semaphore. It panics if g is spent or holds fewer than n permits.
func (g *Guard) Split(n uint64) *Guard {
	for {
		if g.done.Load() {
			panic("wsema: Split on a released Guard")
		}
		held := g.n.Load()
		if n > held {
			panic("wsema: Split exceeds the held amount")
		}
		if g.n.CompareAndSwap(held, held-n) {
			return newGuard(g.sem, n)
		}
	}
}

// OwnedGuard holds permits together with its own Releaser handle.
// Release and Forget close that handle.
type OwnedGuard struct {
	r    *Releaser
	n    uint64
	done atomic.Bool
}

func (g *OwnedGuard) Amount() uint64 {
	if g == nil || g.done.Load() {
		return 0
	}
	return g.n
}

func (g *OwnedGuard) Release() {
	if g == nil || !g.done.CompareAndSwap(false, true) {
		return
	}
	if g.n != 0 {
		g.r.Release(g.n)
	}
	g.r.Close()
}

func (g *OwnedGuard) Forget() uint64 {
	if g == nil || !g.done.CompareAndSwap(false, true) {
		return 0
	}
	g.r.Close()
	return g.n
}

var (
	_ Permit = (*Guard)(nil)
	_ Permit = (*OwnedGuard)(nil)
)
