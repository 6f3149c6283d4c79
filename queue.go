package wsema

import (
	"sort"

	"github.com/gammazero/deque"
)

// waitQueue holds pending acquires in arrival order.
// It is not safe for concurrent use; the owning semaphore locks around it.
type waitQueue struct {
	q   deque.Deque[*waiter]
	seq waiterKey
}

func (wq *waitQueue) len() int {
	return wq.q.Len()
}

func (wq *waitQueue) enqueue(w *waiter) waiterKey {
	wq.seq++
	w.key = wq.seq
	wq.q.PushBack(w)
	return w.key
}

// cancel removes w if it is still queued. Removal does not disturb the
// order of the remaining waiters.
func (wq *waitQueue) cancel(w *waiter) bool {
	n := wq.q.Len()
	i := sort.Search(n, func(i int) bool {
		return wq.q.At(i).key >= w.key
	})
	if i == n || wq.q.At(i) != w {
		return false
	}
	wq.q.Remove(i)
	w.resolve(waiterCancelled)
	return true
}

// satisfyFront grants waiters from the front for as long as take succeeds.
// It stops at the first waiter take refuses: later waiters never overtake
// it, even when their smaller requests would fit.
func (wq *waitQueue) satisfyFront(take func(n uint64) bool) int {
	woken := 0
	for wq.q.Len() > 0 {
		w := wq.q.Front()
		if !take(w.n) {
			break
		}
		wq.q.PopFront()
		w.resolve(waiterGranted)
		woken++
	}
	return woken
}

// drain resolves every queued waiter with s.
func (wq *waitQueue) drain(s waiterState) int {
	n := wq.q.Len()
	for wq.q.Len() > 0 {
		wq.q.PopFront().resolve(s)
	}
	return n
}
