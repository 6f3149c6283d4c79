package wsema

import (
	"math"
	"sync/atomic"

	"github.com/llxisdsh/wsema/internal/opt"
)

// MaxPermits is the largest permit count a Semaphore can hold, and the
// largest amount that can be acquired or released in one call.
const MaxPermits = math.MaxInt64

// poisonedCount marks a poisoned counter. It is never a valid permit count.
const poisonedCount = math.MinInt64

// counter is the permit count of a Semaphore.
//
// The value is either a count in [0, MaxPermits] or poisonedCount.
// All mutations are CAS loops, so readers never need the semaphore lock.
type counter struct {
	v atomic.Int64
	_ [opt.PadInt64_]byte
}

func (c *counter) init(n uint64) {
	c.v.Store(int64(n))
}

// load returns the available permits and whether the counter is poisoned.
func (c *counter) load() (uint64, bool) {
	v := c.v.Load()
	if v == poisonedCount {
		return 0, true
	}
	return uint64(v), false
}

// tryTake subtracts n if at least n permits are available.
func (c *counter) tryTake(n uint64) (bool, error) {
	for {
		v := c.v.Load()
		if v == poisonedCount {
			return false, ErrPoisoned
		}
		if uint64(v) < n {
			return false, nil
		}
		if c.v.CompareAndSwap(v, v-int64(n)) {
			return true, nil
		}
	}
}

// add returns false without mutating when v+n would exceed MaxPermits.
// Adding to a poisoned counter is a successful no-op.
func (c *counter) add(n uint64) bool {
	for {
		v := c.v.Load()
		if v == poisonedCount {
			return true
		}
		if n > uint64(MaxPermits-v) {
			return false
		}
		if c.v.CompareAndSwap(v, v+int64(n)) {
			return true
		}
	}
}

// poison reports whether this call was the one that poisoned c.
func (c *counter) poison() bool {
	return c.v.Swap(poisonedCount) != poisonedCount
}
