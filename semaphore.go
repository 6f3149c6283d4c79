package wsema

import (
	"context"
	"fmt"
)

// Semaphore is a weighted counting semaphore that guarantees FIFO order.
//
// Permits are assigned to waiters strictly in order of arrival. A release
// wakes queued waiters from the front for as long as they fit and stops at
// the first one that does not, so a small late request can never starve an
// earlier large one. TryAcquire does not barge past queued waiters either.
//
// Implementation:
// A TicketLock guards the waiter queue and every counter mutation. The
// counter itself is atomic, so Available and Poisoned never take the lock.
type Semaphore struct {
	_     noCopy
	count counter
	mu    TicketLock
	queue waitQueue
	hc    handleCount
}

// New creates a Semaphore holding initial permits.
// It panics if initial exceeds MaxPermits.
func New(initial uint64) *Semaphore {
	checkAmount(initial, MaxPermits)
	s := &Semaphore{}
	s.count.init(initial)
	return s
}

func (s *Semaphore) TryAcquire(n uint64) (bool, error) {
	checkAmount(n, MaxPermits)
	s.mu.Lock()
	if n != 0 && s.queue.len() != 0 {
		s.mu.Unlock()
		return false, nil
	}
	ok, err := s.count.tryTake(n)
	s.mu.Unlock()
	return ok, err
}

// Acquire takes n permits, blocking while they are unavailable.
//
// An acquire that can be served immediately succeeds even if ctx is
// already done. A waiter granted concurrently with the cancellation of
// ctx keeps its permits: Acquire then returns the Guard and a nil error.
func (s *Semaphore) Acquire(ctx context.Context, n uint64) (*Guard, error) {
	checkAmount(n, MaxPermits)
	s.mu.Lock()
	if n == 0 || s.queue.len() == 0 {
		ok, err := s.count.tryTake(n)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if ok {
			s.mu.Unlock()
			return newGuard(s, n), nil
		}
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	w := newWaiter(ctx, n)
	s.queue.enqueue(w)
	s.mu.Unlock()

	if err := w.wait(ctx, s.cancel); err != nil {
		return nil, err
	}
	return newGuard(s, n), nil
}

func (s *Semaphore) cancel(w *waiter) bool {
	s.mu.Lock()
	ok := s.queue.cancel(w)
	if ok {
		// w may have been the waiter blocking the front.
		s.queue.satisfyFront(s.take)
	}
	s.mu.Unlock()
	return ok
}

func (s *Semaphore) take(n uint64) bool {
	ok, _ := s.count.tryTake(n)
	return ok
}

// Release returns n permits to s and wakes every waiter, front first, that
// can now be satisfied. Releasing into a poisoned semaphore does nothing.
//
// It panics if the count would exceed MaxPermits.
func (s *Semaphore) Release(n uint64) {
	checkAmount(n, MaxPermits)
	if n == 0 {
		return
	}
	s.mu.Lock()
	if !s.count.add(n) {
		s.mu.Unlock()
		panicOverflow(n)
	}
	s.queue.satisfyFront(s.take)
	s.mu.Unlock()
}

func (s *Semaphore) Poison() {
	s.mu.Lock()
	s.count.poison()
	s.queue.drain(waiterPoisoned)
	s.mu.Unlock()
}

func (s *Semaphore) Poisoned() bool {
	_, poisoned := s.count.load()
	return poisoned
}

func (s *Semaphore) Available() uint64 {
	n, _ := s.count.load()
	return n
}

func (s *Semaphore) Waiters() int {
	s.mu.Lock()
	n := s.queue.len()
	s.mu.Unlock()
	return n
}

func (s *Semaphore) Releaser() *Releaser {
	return newReleaser(s)
}

func (s *Semaphore) handles() *handleCount {
	return &s.hc
}

// String returns "Semaphore(available=N, waiters=M)", or
// "Semaphore(poisoned)".
func (s *Semaphore) String() string {
	if s.Poisoned() {
		return "Semaphore(poisoned)"
	}
	return fmt.Sprintf("Semaphore(available=%d, waiters=%d)", s.Available(), s.Waiters())
}
