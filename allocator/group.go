package allocator

import (
	"context"

	"github.com/operator-framework/pgalloc/collective"
	"github.com/operator-framework/pgalloc/filestore"
	"github.com/operator-framework/pgalloc/heapalloc"
	"github.com/operator-framework/pgalloc/internal/alloclog"
	"github.com/operator-framework/pgalloc/pagealloc"
	"github.com/operator-framework/pgalloc/registry"
)

// New creates a single-rank, single-thread allocation domain: the common
// case, equivalent to calling NewGroup with a one-member collective.Single
// group and taking its sole Domain.
func New(ctx context.Context, opts ...Option) (*Domain, error) {
	cfg := newConfig(opts...)
	alloclog.SetDebug(cfg.Debug)
	domains, err := NewGroup(ctx, cfg, []collective.Collective{collective.Single{}})
	if err != nil {
		return nil, err
	}
	return domains[0], nil
}

// NewGroup creates one Domain handle per member of an already-constructed
// collective, coordinating the owner's file-or-heap creation, the startup
// barrier, and the peers' file-open across them. members[0] must be the
// owner (Rank() == 0); every member must eventually call each Domain
// operation for the group to stay in lock step, per the collective's
// rendezvous contract.
//
// This differs from spec.md's one-call-per-rank create(path?) in one way:
// because every rank here is a goroutine in the same process, the owner's
// created file handle / heap map has to reach the peers through shared
// memory rather than through a wire protocol, so NewGroup builds every
// rank's Domain in one call instead of each rank independently calling
// New. A true multi-process deployment would instead have each process
// call New and rely on its Collective implementation (e.g. an MPI binding)
// to carry the broadcast and barrier across process boundaries; the
// owner-creates-then-barrier-then-peers-open sequencing below is exactly
// what such an implementation would still need to perform per rank.
func NewGroup(ctx context.Context, cfg Config, members []collective.Collective) ([]*Domain, error) {
	if len(members) == 0 {
		panic("allocator: NewGroup requires at least one member")
	}

	domains := make([]*Domain, len(members))

	var shared struct {
		store *filestore.FileStore
		heap  *heapalloc.HeapAllocator
	}
	var createErr error

	err := collective.Fanout(ctx, members, 0, func(ctx context.Context, c collective.Collective) error {
		if c.Rank() == 0 {
			if cfg.Path != "" {
				store, err := filestore.Create(cfg.Path)
				if err != nil {
					createErr = err
				} else {
					shared.store = store
				}
			} else {
				shared.heap = heapalloc.New()
			}
		}

		if err := c.Barrier(ctx); err != nil {
			return err
		}
		if createErr != nil {
			return nil
		}

		log := alloclog.ForDomain("domain", cfg.Path, c.Rank())
		d := &Domain{coll: c, log: log, path: cfg.Path}

		if cfg.Path != "" {
			if c.Rank() == 0 {
				d.store = shared.store
				d.page = pagealloc.New(shared.store)
				d.reg = registry.New()
			} else {
				store, err := filestore.Open(cfg.Path, shared.store.FileBytes())
				if err != nil {
					return err
				}
				d.store = store
			}
		} else {
			d.heap = shared.heap
			if c.Rank() == 0 {
				d.reg = registry.New()
			}
		}

		domains[c.Rank()] = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	if createErr != nil {
		return nil, createErr
	}
	return domains, nil
}
