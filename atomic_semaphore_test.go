package wsema

import (
	"context"
	"testing"
)

func TestAtomicSemaphore_QueuedBit(t *testing.T) {
	s := NewAtomic(2)
	if s.state.Load()&atomicQueued != 0 {
		t.Fatal("queued bit set on a fresh semaphore")
	}

	ch := goAcquire(context.Background(), s, 5)
	waitUntil(t, "waiter queued", func() bool { return s.Waiters() == 1 })
	if s.state.Load()&atomicQueued == 0 {
		t.Fatal("queued bit clear while a waiter is queued")
	}
	if s.Available() != 2 {
		t.Fatalf("Available leaked the queued bit: %d", s.Available())
	}

	s.Release(3)
	if r := expectResult(t, ch); r.err != nil {
		t.Fatal(r.err)
	}
	if v := s.state.Load(); v != 0 {
		t.Fatalf("state = %#x after the queue drained, want 0", v)
	}

	// Back on the fast path.
	s.Release(1)
	if ok, _ := s.TryAcquire(1); !ok {
		t.Fatal("fast path TryAcquire failed")
	}
}

func TestAtomicSemaphore_CancelClearsBit(t *testing.T) {
	s := NewAtomic(0)
	ctx, cancel := context.WithCancel(context.Background())
	ch := goAcquire(ctx, s, 1)
	waitUntil(t, "waiter queued", func() bool { return s.Waiters() == 1 })

	cancel()
	expectResult(t, ch)
	if s.state.Load()&atomicQueued != 0 {
		t.Fatal("queued bit left set after the only waiter cancelled")
	}
}

func TestAtomicSemaphore_OverflowUnderLock(t *testing.T) {
	s := NewAtomic(MaxAtomicPermits - 1)
	ch := goAcquire(context.Background(), s, MaxAtomicPermits)
	waitUntil(t, "waiter queued", func() bool { return s.Waiters() == 1 })

	mustPanic(t, "Release past the maximum with waiters", func() { s.Release(2) })
	s.Release(1)
	if r := expectResult(t, ch); r.err != nil {
		t.Fatal(r.err)
	}
	if s.Available() != 0 {
		t.Fatalf("available = %d", s.Available())
	}
}
