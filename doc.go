// Package wsema provides a weighted counting semaphore with strict FIFO
// fairness and poisoning.
//
// A semaphore holds a count of permits. Callers acquire permits in
// arbitrary amounts and release them later, usually through the Guard
// returned by Acquire:
//
//	sem := wsema.New(10)
//	g, err := sem.Acquire(ctx, 4)
//	if err != nil {
//		return err // ctx.Err() or ErrPoisoned
//	}
//	defer g.Release()
//
// # Fairness
//
// Waiters are granted in the order they arrived. A release wakes waiters
// from the front of the queue for as long as their requests fit and stops
// at the first one that does not. A later, smaller request therefore never
// overtakes an earlier, larger one, even when it would fit. TryAcquire
// honors the same rule and fails while anyone is queued. This trades
// throughput for the guarantee that the oldest waiter is never starved.
//
// # Poisoning
//
// Poison, or closing the last Releaser handle, puts a semaphore into a
// terminal state: queued waiters wake with ErrPoisoned and every later
// acquire fails with ErrPoisoned. Releasing into a poisoned semaphore is a
// no-op, so guards can always be released safely.
//
// # Cancellation
//
// Acquire watches its context. A waiter whose context ends leaves the queue
// immediately and the waiters behind it are re-examined. Timeouts are
// expressed as context deadlines.
//
// # Programmer errors
//
// Amounts above the backend maximum and releases that would overflow the
// count panic. They mean the permit budget was mismanaged, and clamping
// would hide the bug.
//
// # Backends
//
// Semaphore serializes every mutation on a fair TicketLock. AtomicSemaphore
// offers the same contract with single-CAS fast paths while no waiter is
// queued. Both satisfy Weighted, and NewWeighted picks one by option.
// Registry holds named semaphores built once at start-up.
package wsema
