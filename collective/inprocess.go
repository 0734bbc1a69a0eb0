package collective

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/operator-framework/pgalloc"
)

// group is the shared rendezvous state for an in-process collective of
// fixed size, modeling spec.md's "shared-memory threading" build
// configuration as an injected capability rather than a compile-time flag.
type group struct {
	size int

	mu          sync.Mutex
	arrived     int
	barrierDone chan struct{}

	bcastArrived int
	bcastValue   pgalloc.VirtualPointer
	bcastResult  pgalloc.VirtualPointer
	bcastDone    chan struct{}
}

func newGroup(size int) *group {
	return &group{
		size:        size,
		barrierDone: make(chan struct{}),
		bcastDone:   make(chan struct{}),
	}
}

// member is one participant's view of a group; it implements Collective.
type member struct {
	g    *group
	rank int
}

var _ Collective = (*member)(nil)

// NewInProcess returns size Collective handles, one per goroutine, sharing
// a single rendezvous group. handles[0] is the owner.
func NewInProcess(size int) []Collective {
	if size < 1 {
		panic("collective: size must be >= 1")
	}
	g := newGroup(size)
	handles := make([]Collective, size)
	for i := 0; i < size; i++ {
		handles[i] = &member{g: g, rank: i}
	}
	return handles
}

func (m *member) Rank() int { return m.rank }
func (m *member) Size() int { return m.g.size }

func (m *member) Barrier(ctx context.Context) error {
	g := m.g
	g.mu.Lock()
	g.arrived++
	done := g.barrierDone
	if g.arrived == g.size {
		g.arrived = 0
		g.barrierDone = make(chan struct{})
		close(done)
	}
	g.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *member) BroadcastPointer(ctx context.Context, root int, p pgalloc.VirtualPointer) (pgalloc.VirtualPointer, error) {
	g := m.g
	g.mu.Lock()
	if m.rank == root {
		g.bcastValue = p
	}
	g.bcastArrived++
	done := g.bcastDone
	if g.bcastArrived == g.size {
		g.bcastArrived = 0
		// Publish this round's value separately so the root's next
		// round cannot overwrite it before every member has read it.
		g.bcastResult = g.bcastValue
		g.bcastDone = make(chan struct{})
		close(done)
	}
	g.mu.Unlock()

	select {
	case <-done:
		g.mu.Lock()
		v := g.bcastResult
		g.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		return pgalloc.NullPtr, ctx.Err()
	}
}

// Fanout runs fn once per member concurrently and waits for all to finish,
// the pattern the allocator's NewGroup and its tests use to drive a
// rendezvous group. Every member gets its own goroutine; maxConcurrent
// bounds how many of them run fn at once via a weighted semaphore, and
// maxConcurrent <= 0 means unbounded. A fn that calls Barrier or
// BroadcastPointer completes only if maxConcurrent is unbounded or at
// least len(members).
func Fanout(ctx context.Context, members []Collective, maxConcurrent int, fn func(ctx context.Context, c Collective) error) error {
	grp, ctx := errgroup.WithContext(ctx)

	var sem *semaphore.Weighted
	if maxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(maxConcurrent))
	}

	for _, c := range members {
		c := c
		grp.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					return err
				}
				defer sem.Release(1)
			}
			return fn(ctx, c)
		})
	}
	return grp.Wait()
}
