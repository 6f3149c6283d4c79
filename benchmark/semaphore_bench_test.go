package benchmark

import (
	"context"
	"strconv"
	"testing"

	"github.com/llxisdsh/wsema"
	msem "github.com/marusama/semaphore/v2"
	xsem "golang.org/x/sync/semaphore"
)

// ============================================================================
// Semaphore Adapters
// ============================================================================

type weighted interface {
	acquire(ctx context.Context, n int) error
	tryAcquire(n int) bool
	release(n int)
}

type wsemaAdapter struct{ s wsema.Weighted }

func (a wsemaAdapter) acquire(ctx context.Context, n int) error {
	g, err := a.s.Acquire(ctx, uint64(n))
	if err != nil {
		return err
	}
	g.Forget()
	return nil
}

func (a wsemaAdapter) tryAcquire(n int) bool {
	ok, _ := a.s.TryAcquire(uint64(n))
	return ok
}

func (a wsemaAdapter) release(n int) { a.s.Release(uint64(n)) }

type xsyncAdapter struct{ s *xsem.Weighted }

func (a xsyncAdapter) acquire(ctx context.Context, n int) error {
	return a.s.Acquire(ctx, int64(n))
}
func (a xsyncAdapter) tryAcquire(n int) bool { return a.s.TryAcquire(int64(n)) }
func (a xsyncAdapter) release(n int)         { a.s.Release(int64(n)) }

type marusamaAdapter struct{ s msem.Semaphore }

func (a marusamaAdapter) acquire(ctx context.Context, n int) error {
	return a.s.Acquire(ctx, n)
}
func (a marusamaAdapter) tryAcquire(n int) bool { return a.s.TryAcquire(n) }
func (a marusamaAdapter) release(n int)         { a.s.Release(n) }

var impls = []struct {
	name string
	new  func(limit int) weighted
}{
	{"wsema.Semaphore", func(l int) weighted { return wsemaAdapter{wsema.New(uint64(l))} }},
	{"wsema.AtomicSemaphore", func(l int) weighted { return wsemaAdapter{wsema.NewAtomic(uint64(l))} }},
	{"x/sync.Weighted", func(l int) weighted { return xsyncAdapter{xsem.NewWeighted(int64(l))} }},
	{"marusama", func(l int) weighted { return marusamaAdapter{msem.New(l)} }},
}

// ============================================================================
// Benchmarks
// ============================================================================

// Uncontended acquire/release pairs.
func BenchmarkAcquireRelease(b *testing.B) {
	for _, impl := range impls {
		b.Run(impl.name, func(b *testing.B) {
			b.ReportAllocs()
			s := impl.new(1)
			ctx := context.Background()
			for b.Loop() {
				_ = s.acquire(ctx, 1)
				s.release(1)
			}
		})
	}
}

// Many goroutines competing for a few permits.
func BenchmarkContended(b *testing.B) {
	for _, limit := range []int{1, 4, 64} {
		for _, impl := range impls {
			b.Run(impl.name+"/limit="+strconv.Itoa(limit), func(b *testing.B) {
				b.ReportAllocs()
				s := impl.new(limit)
				ctx := context.Background()
				b.RunParallel(func(pb *testing.PB) {
					for pb.Next() {
						if err := s.acquire(ctx, 1); err != nil {
							b.Error(err)
							return
						}
						heavyWork(64)
						s.release(1)
					}
				})
			})
		}
	}
}

// Mixed weights against a limit that forces queueing.
func BenchmarkWeighted(b *testing.B) {
	const limit = 16
	for _, impl := range impls {
		b.Run(impl.name, func(b *testing.B) {
			b.ReportAllocs()
			s := impl.new(limit)
			ctx := context.Background()
			b.RunParallel(func(pb *testing.PB) {
				n := 0
				for pb.Next() {
					w := n%limit + 1
					n++
					if err := s.acquire(ctx, w); err != nil {
						b.Error(err)
						return
					}
					heavyWork(16)
					s.release(w)
				}
			})
		})
	}
}

// Non-blocking attempts with occasional success.
func BenchmarkTryAcquire(b *testing.B) {
	for _, impl := range impls {
		b.Run(impl.name, func(b *testing.B) {
			b.ReportAllocs()
			s := impl.new(8)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if s.tryAcquire(1) {
						s.release(1)
					}
				}
			})
		})
	}
}

// Acquires that time out while the semaphore stays exhausted.
func BenchmarkCancelledAcquire(b *testing.B) {
	for _, impl := range impls {
		b.Run(impl.name, func(b *testing.B) {
			b.ReportAllocs()
			s := impl.new(1)
			if err := s.acquire(context.Background(), 1); err != nil {
				b.Fatal(err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			for b.Loop() {
				_ = s.acquire(ctx, 1)
			}
		})
	}
}

// ============================================================================
// Helpers
// ============================================================================

func heavyWork(n int) int {
	x := 0
	for i := 0; i < n; i++ {
		x ^= i * 31
		x += i >> 1
	}
	return x
}
