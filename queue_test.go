package wsema

import (
	"context"
	"testing"
)

func queued(wq *waitQueue) []uint64 {
	var out []uint64
	for i := range wq.q.Len() {
		out = append(out, wq.q.At(i).n)
	}
	return out
}

func TestWaitQueue_FrontScanStops(t *testing.T) {
	var wq waitQueue
	ws := []*waiter{
		newWaiter(context.Background(), 2),
		newWaiter(context.Background(), 10),
		newWaiter(context.Background(), 1),
	}
	for _, w := range ws {
		wq.enqueue(w)
	}

	avail := uint64(5)
	take := func(n uint64) bool {
		if n > avail {
			return false
		}
		avail -= n
		return true
	}
	if woken := wq.satisfyFront(take); woken != 1 {
		t.Fatalf("woken = %d, want 1", woken)
	}
	if avail != 3 {
		t.Fatalf("avail = %d, want 3", avail)
	}
	if ws[0].resolved() != waiterGranted {
		t.Fatal("front waiter not granted")
	}
	if ws[2].resolved() != waiterPending {
		t.Fatal("small waiter overtook the blocked one")
	}
	if got := queued(&wq); len(got) != 2 || got[0] != 10 || got[1] != 1 {
		t.Fatalf("queue = %v", got)
	}

	avail = 11
	if woken := wq.satisfyFront(take); woken != 2 {
		t.Fatalf("woken = %d, want 2", woken)
	}
	if wq.len() != 0 || avail != 0 {
		t.Fatalf("len = %d avail = %d", wq.len(), avail)
	}
}

func TestWaitQueue_Cancel(t *testing.T) {
	var wq waitQueue
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws := make([]*waiter, 5)
	for i := range ws {
		ws[i] = newWaiter(ctx, uint64(i+1))
		if k := wq.enqueue(ws[i]); k != waiterKey(i+1) {
			t.Fatalf("key = %d, want %d", k, i+1)
		}
	}

	if !wq.cancel(ws[2]) {
		t.Fatal("cancel of a queued waiter failed")
	}
	if wq.cancel(ws[2]) {
		t.Fatal("second cancel succeeded")
	}
	if ws[2].resolved() != waiterCancelled {
		t.Fatal("cancelled waiter not marked")
	}
	if got := queued(&wq); len(got) != 4 || got[0] != 1 || got[1] != 2 || got[2] != 4 || got[3] != 5 {
		t.Fatalf("queue = %v", got)
	}

	wq.satisfyFront(func(uint64) bool { return true })
	if wq.cancel(ws[4]) {
		t.Fatal("cancel of a granted waiter succeeded")
	}
	for _, i := range []int{0, 1, 3, 4} {
		if ws[i].resolved() != waiterGranted {
			t.Fatalf("waiter %d not granted", i)
		}
	}
}

func TestWaitQueue_Drain(t *testing.T) {
	var wq waitQueue
	ws := []*waiter{newWaiter(context.Background(), 1), newWaiter(context.Background(), 2)}
	for _, w := range ws {
		wq.enqueue(w)
	}
	if n := wq.drain(waiterPoisoned); n != 2 {
		t.Fatalf("drained %d, want 2", n)
	}
	for _, w := range ws {
		if err := w.wait(context.Background(), nil); err != ErrPoisoned {
			t.Fatalf("wait = %v, want ErrPoisoned", err)
		}
	}
}
