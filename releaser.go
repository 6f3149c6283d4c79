package wsema

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Releaser is a release-capable handle on a semaphore.
//
// A semaphore counts its live Releasers. When the last one is closed, or
// becomes unreachable without being closed, the semaphore is poisoned:
// nobody is left who could release permits, so every queued and future
// acquire fails with ErrPoisoned instead of hanging.
//
// A semaphore that never handed out a Releaser is only poisoned by Poison.
type Releaser struct {
	sem     Weighted
	closed  atomic.Bool
	cleanup runtime.Cleanup
}

func newReleaser(w Weighted) *Releaser {
	w.handles().retain()
	r := &Releaser{sem: w}
	r.cleanup = runtime.AddCleanup(r, dropHandle, w)
	return r
}

func dropHandle(w Weighted) {
	if w.handles().drop() {
		w.Poison()
	}
}

// Semaphore returns the semaphore r releases into.
func (r *Releaser) Semaphore() Weighted {
	return r.sem
}

// Release returns n permits. It panics if r is closed.
func (r *Releaser) Release(n uint64) {
	if r.closed.Load() {
		panic("wsema: Release on a closed Releaser")
	}
	r.sem.Release(n)
}

// Clone returns another handle on the same semaphore. It panics if r is
// closed.
func (r *Releaser) Clone() *Releaser {
	if r.closed.Load() {
		panic("wsema: Clone of a closed Releaser")
	}
	return newReleaser(r.sem)
}

// Close drops the handle. Closing the last live handle poisons the
// semaphore. Close is idempotent.
func (r *Releaser) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.cleanup.Stop()
	dropHandle(r.sem)
}

// Closed reports whether Close has been called.
func (r *Releaser) Closed() bool {
	return r.closed.Load()
}

// Acquire takes n permits from the semaphore and returns them in an
// OwnedGuard that holds its own clone of r.
func (r *Releaser) Acquire(ctx context.Context, n uint64) (*OwnedGuard, error) {
	clone := r.Clone()
	g, err := r.sem.Acquire(ctx, n)
	if err != nil {
		clone.Close()
		return nil, err
	}
	return &OwnedGuard{r: clone, n: g.Forget()}, nil
}
