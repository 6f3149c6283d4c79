//go:build !race

package opt

import (
	_ "unsafe" // for linkname
)

// Race_ reports whether the package was built with the race detector.
const Race_ = false

// Sema is a zero-value usable binary parking slot backed by the runtime
// semaphore. Each Release lets exactly one Acquire through, in any order.
type Sema uint32

// Acquire parks the calling goroutine until a matching Release.
func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release wakes one goroutine parked in Acquire, or lets the next Acquire
// return immediately.
func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
