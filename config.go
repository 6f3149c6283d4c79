package wsema

// ============================================================================
// Configuration
// ============================================================================

// Backend selects the implementation behind NewWeighted.
type Backend int

const (
	// BackendLock is Semaphore: every mutation under a fair lock.
	BackendLock Backend = iota
	// BackendAtomic is AtomicSemaphore: single-CAS fast paths while no
	// waiter is queued.
	BackendAtomic
)

func (b Backend) String() string {
	switch b {
	case BackendLock:
		return "lock"
	case BackendAtomic:
		return "atomic"
	default:
		return "Backend(?)"
	}
}

// Max returns the largest permit count the backend can hold.
func (b Backend) Max() uint64 {
	if b == BackendAtomic {
		return MaxAtomicPermits
	}
	return MaxPermits
}

// Config defines configurable options for NewWeighted and registry
// entries.
type Config struct {
	// backend picks the semaphore implementation. BackendLock by default.
	backend Backend

	// releaser makes a registry entry hold a counted handle on its
	// semaphore. NewWeighted ignores it.
	releaser bool
}

// WithBackend configures the semaphore implementation.
func WithBackend(b Backend) func(*Config) {
	return func(c *Config) {
		c.backend = b
	}
}

// WithReleaser makes a registry entry start with a release-capable handle
// that Registry.Remove drops. A semaphore registered this way is poisoned
// by Remove once no other Releaser is open.
func WithReleaser() func(*Config) {
	return func(c *Config) {
		c.releaser = true
	}
}

// NewWeighted creates a semaphore holding initial permits on the backend
// chosen by options. It panics if initial exceeds the backend maximum.
//
// Usage:
//
//	sem := wsema.NewWeighted(16, wsema.WithBackend(wsema.BackendAtomic))
func NewWeighted(initial uint64, options ...func(*Config)) Weighted {
	c := newConfig(options)
	if c.backend == BackendAtomic {
		return NewAtomic(initial)
	}
	return New(initial)
}

func newConfig(options []func(*Config)) Config {
	var c Config
	for _, o := range options {
		o(&c)
	}
	return c
}
