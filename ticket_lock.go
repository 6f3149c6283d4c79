package wsema

import (
	"sync/atomic"
)

// TicketLock is a fair, FIFO spin-lock.
//
// Goroutines acquire the lock in the exact order they called Lock, which is
// what keeps the waiter queue of a Semaphore fair all the way down: a
// releaser that arrives late cannot overtake earlier releasers or
// acquirers on the lock itself.
//
// Lock takes a ticket and spins (with adaptive sleep) until it is served.
// It is meant for the very small critical sections of this package.
type TicketLock struct {
	_       noCopy
	next    atomic.Uint32
	serving atomic.Uint32
}

// Lock acquires the lock. Blocks until the lock is available.
func (m *TicketLock) Lock() {
	my := m.next.Add(1) - 1
	var spins int
	for m.serving.Load() != my {
		delay(&spins)
	}
}

// Unlock releases the lock.
func (m *TicketLock) Unlock() {
	m.serving.Add(1)
}
