package wsema

import (
	"errors"
	"fmt"

	"github.com/llxisdsh/pb"
)

// RegistryBuilder collects named semaphores before first use.
//
// Modules register the semaphores they need through ordinary calls at
// start-up, in any order, and the program builds the Registry once
// everything is collected:
//
//	b := wsema.NewRegistryBuilder()
//	b.Register("db", 8).Register("uploads", 1<<20, wsema.WithBackend(wsema.BackendAtomic))
//	reg, err := b.Build()
type RegistryBuilder struct {
	entries []registryEntry
	seen    map[string]struct{}
	errs    []error
}

type registryEntry struct {
	name    string
	permits uint64
	options []func(*Config)
}

// NewRegistryBuilder returns an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{seen: make(map[string]struct{})}
}

// Register records a semaphore named name holding permits. Invalid names
// are reported by Build.
func (b *RegistryBuilder) Register(name string, permits uint64, options ...func(*Config)) *RegistryBuilder {
	switch _, dup := b.seen[name]; {
	case name == "":
		b.errs = append(b.errs, ErrEmptyName)
	case dup:
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateName, name))
	case permits > newConfig(options).backend.Max():
		b.errs = append(b.errs, fmt.Errorf("%w: %q wants %d", ErrTooManyPermits, name, permits))
	default:
		b.seen[name] = struct{}{}
		b.entries = append(b.entries, registryEntry{name, permits, options})
	}
	return b
}

// Build creates every registered semaphore. It fails with all registration
// errors joined if any Register call was invalid.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if len(b.errs) != 0 {
		return nil, errors.Join(b.errs...)
	}
	r := &Registry{}
	for _, e := range b.entries {
		r.LoadOrRegister(e.name, e.permits, e.options...)
	}
	return r, nil
}

// Registry is a concurrent set of named semaphores.
//
// An entry registered WithReleaser holds one counted handle on its
// semaphore until Remove gives it up. The handle is not tied to the
// Registry's own reachability: semaphores looked up from a Registry that
// is later dropped keep working.
type Registry struct {
	_ noCopy
	m pb.MapOf[string, *registered]
}

type registered struct {
	sem  Weighted
	held bool
}

// Lookup returns the semaphore registered under name.
func (r *Registry) Lookup(name string) (Weighted, bool) {
	e, ok := r.m.Load(name)
	if !ok {
		return nil, false
	}
	return e.sem, true
}

// MustLookup is like Lookup but panics if name is not registered.
func (r *Registry) MustLookup(name string) Weighted {
	sem, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("wsema: no semaphore registered as %q", name))
	}
	return sem
}

// LoadOrRegister returns the semaphore registered under name, creating it
// with permits and options if absent. The result loaded reports whether it
// already existed. It panics if permits exceed the backend maximum.
func (r *Registry) LoadOrRegister(name string, permits uint64, options ...func(*Config)) (sem Weighted, loaded bool) {
	c := newConfig(options)
	checkAmount(permits, c.backend.Max())
	e, loaded := r.m.ProcessEntry(
		name,
		func(l *pb.EntryOf[string, *registered]) (*pb.EntryOf[string, *registered], *registered, bool) {
			if l != nil {
				return l, l.Value, true
			}
			s := NewWeighted(permits, options...)
			e := &registered{sem: s, held: c.releaser}
			if e.held {
				s.handles().retain()
			}
			return &pb.EntryOf[string, *registered]{Value: e}, e, false
		},
	)
	return e.sem, loaded
}

// Remove unregisters name. If the entry was registered WithReleaser, its
// handle is dropped, which poisons the semaphore unless other Releasers
// are still open.
func (r *Registry) Remove(name string) bool {
	e, ok := r.m.ProcessEntry(
		name,
		func(l *pb.EntryOf[string, *registered]) (*pb.EntryOf[string, *registered], *registered, bool) {
			if l == nil {
				return nil, nil, false
			}
			return nil, l.Value, true
		},
	)
	if ok && e.held {
		dropHandle(e.sem)
	}
	return ok
}

// Range calls fn for each registered semaphore until fn returns false.
func (r *Registry) Range(fn func(name string, sem Weighted) bool) {
	r.m.Range(func(name string, e *registered) bool {
		return fn(name, e.sem)
	})
}

// Len returns the number of registered semaphores.
func (r *Registry) Len() int {
	n := 0
	r.m.Range(func(string, *registered) bool {
		n++
		return true
	})
	return n
}

// PoisonAll poisons every registered semaphore. Entries stay registered so
// that late lookups fail fast with ErrPoisoned.
func (r *Registry) PoisonAll() {
	r.m.Range(func(_ string, e *registered) bool {
		e.sem.Poison()
		return true
	})
}
