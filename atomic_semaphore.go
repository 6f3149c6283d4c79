package wsema

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/llxisdsh/wsema/internal/opt"
)

// MaxAtomicPermits is the largest permit count an AtomicSemaphore can hold.
// One bit of the state word is reserved for the queued flag.
const MaxAtomicPermits = 1<<62 - 1

const (
	atomicQueued   int64 = 1 << 62
	atomicPermMask       = atomicQueued - 1
)

// AtomicSemaphore is a weighted FIFO semaphore with the same contract as
// Semaphore, tuned for the uncontended case.
//
// While nobody is queued, TryAcquire, Acquire and Release are a single CAS
// on one state word and never touch the lock. The first acquire that has to
// wait sets the queued bit under the lock; from then on every path that
// sees the bit goes through the lock and the same waiter queue as
// Semaphore. Because the bit lives in the CAS word, a fast path can never
// slip past a queued waiter.
//
// State word (64-bit):
//
//	math.MinInt64: poisoned
//	Bit 62:        waiters are queued
//	Bit 0-61:      available permits
type AtomicSemaphore struct {
	_     noCopy
	state atomic.Int64
	_     [opt.PadInt64_]byte
	mu    TicketLock
	queue waitQueue
	hc    handleCount
}

// NewAtomic creates an AtomicSemaphore holding initial permits.
// It panics if initial exceeds MaxAtomicPermits.
func NewAtomic(initial uint64) *AtomicSemaphore {
	checkAmount(initial, MaxAtomicPermits)
	s := &AtomicSemaphore{}
	s.state.Store(int64(initial))
	return s
}

// fastTake is the lock-free path. blocked reports that waiters are queued.
func (s *AtomicSemaphore) fastTake(n uint64) (ok, blocked bool, err error) {
	for {
		v := s.state.Load()
		if v == poisonedCount {
			return false, false, ErrPoisoned
		}
		if v&atomicQueued != 0 {
			return false, true, nil
		}
		if uint64(v) < n {
			return false, false, nil
		}
		if s.state.CompareAndSwap(v, v-int64(n)) {
			return true, false, nil
		}
	}
}

func (s *AtomicSemaphore) TryAcquire(n uint64) (bool, error) {
	checkAmount(n, MaxAtomicPermits)
	if n == 0 {
		if s.Poisoned() {
			return false, ErrPoisoned
		}
		return true, nil
	}
	ok, _, err := s.fastTake(n)
	return ok, err
}

func (s *AtomicSemaphore) Acquire(ctx context.Context, n uint64) (*Guard, error) {
	checkAmount(n, MaxAtomicPermits)
	if n == 0 {
		if s.Poisoned() {
			return nil, ErrPoisoned
		}
		return newGuard(s, 0), nil
	}
	ok, _, err := s.fastTake(n)
	if err != nil {
		return nil, err
	}
	if ok {
		return newGuard(s, n), nil
	}

	s.mu.Lock()
	for {
		v := s.state.Load()
		if v == poisonedCount {
			s.mu.Unlock()
			return nil, ErrPoisoned
		}
		if v&atomicQueued == 0 && uint64(v) >= n {
			if s.state.CompareAndSwap(v, v-int64(n)) {
				s.mu.Unlock()
				return newGuard(s, n), nil
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		if v&atomicQueued != 0 || s.state.CompareAndSwap(v, v|atomicQueued) {
			break
		}
	}
	w := newWaiter(ctx, n)
	s.queue.enqueue(w)
	s.mu.Unlock()

	if err := w.wait(ctx, s.cancel); err != nil {
		return nil, err
	}
	return newGuard(s, n), nil
}

func (s *AtomicSemaphore) cancel(w *waiter) bool {
	s.mu.Lock()
	ok := s.queue.cancel(w)
	if ok {
		s.satisfyLocked()
	}
	s.mu.Unlock()
	return ok
}

// takeQueued subtracts n from the permits while keeping the queued bit.
func (s *AtomicSemaphore) takeQueued(n uint64) bool {
	for {
		v := s.state.Load()
		if v == poisonedCount || uint64(v&atomicPermMask) < n {
			return false
		}
		if s.state.CompareAndSwap(v, v-int64(n)) {
			return true
		}
	}
}

// satisfyLocked wakes the waiters that fit and clears the queued bit once
// the queue is empty. s.mu must be held.
func (s *AtomicSemaphore) satisfyLocked() {
	s.queue.satisfyFront(s.takeQueued)
	if s.queue.len() != 0 {
		return
	}
	for {
		v := s.state.Load()
		if v == poisonedCount || v&atomicQueued == 0 {
			return
		}
		if s.state.CompareAndSwap(v, v&^atomicQueued) {
			return
		}
	}
}

// Release returns n permits. It panics if the count would exceed
// MaxAtomicPermits.
func (s *AtomicSemaphore) Release(n uint64) {
	checkAmount(n, MaxAtomicPermits)
	if n == 0 {
		return
	}
	for {
		v := s.state.Load()
		if v == poisonedCount {
			return
		}
		if v&atomicQueued != 0 {
			break
		}
		if n > uint64(MaxAtomicPermits-v) {
			panicOverflow(n)
		}
		if s.state.CompareAndSwap(v, v+int64(n)) {
			return
		}
	}

	s.mu.Lock()
	for {
		v := s.state.Load()
		if v == poisonedCount {
			s.mu.Unlock()
			return
		}
		if n > uint64(MaxAtomicPermits-v&atomicPermMask) {
			s.mu.Unlock()
			panicOverflow(n)
		}
		if s.state.CompareAndSwap(v, v+int64(n)) {
			break
		}
	}
	s.satisfyLocked()
	s.mu.Unlock()
}

func (s *AtomicSemaphore) Poison() {
	s.state.Store(poisonedCount)
	s.mu.Lock()
	s.queue.drain(waiterPoisoned)
	s.mu.Unlock()
}

func (s *AtomicSemaphore) Poisoned() bool {
	return s.state.Load() == poisonedCount
}

func (s *AtomicSemaphore) Available() uint64 {
	v := s.state.Load()
	if v == poisonedCount {
		return 0
	}
	return uint64(v & atomicPermMask)
}

func (s *AtomicSemaphore) Waiters() int {
	s.mu.Lock()
	n := s.queue.len()
	s.mu.Unlock()
	return n
}

func (s *AtomicSemaphore) Releaser() *Releaser {
	return newReleaser(s)
}

func (s *AtomicSemaphore) handles() *handleCount {
	return &s.hc
}

// String returns "AtomicSemaphore(available=N, waiters=M)", or
// "AtomicSemaphore(poisoned)".
func (s *AtomicSemaphore) String() string {
	if s.Poisoned() {
		return "AtomicSemaphore(poisoned)"
	}
	return fmt.Sprintf("AtomicSemaphore(available=%d, waiters=%d)", s.Available(), s.Waiters())
}
