//go:build race

package opt

import (
	"sync"
)

// Race_ reports whether the package was built with the race detector.
const Race_ = true

// Sema is a zero-value usable binary parking slot.
// Under the race detector the runtime semaphore is invisible to the
// happens-before analysis, so a mutex/cond pair is used instead.
type Sema struct {
	mu sync.Mutex
	c  sync.Cond
	n  uint32
}

// Acquire parks the calling goroutine until a matching Release.
func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.c.L == nil {
		s.c.L = &s.mu
	}
	for s.n == 0 {
		s.c.Wait()
	}
	s.n--
	s.mu.Unlock()
}

// Release wakes one goroutine parked in Acquire, or lets the next Acquire
// return immediately.
func (s *Sema) Release() {
	s.mu.Lock()
	s.n++
	if s.c.L != nil {
		s.c.Signal()
	}
	s.mu.Unlock()
}
