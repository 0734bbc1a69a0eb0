// Package collective defines the distributed/shared-memory coordination
// capability the allocator façade is built against. The original couples
// an OpenMP lock and an MPI rank directly to the allocator; this module
// instead injects a Collective so the core stays unit-testable without a
// real distributed runtime, per the façade's design notes.
package collective

import (
	"context"

	"github.com/operator-framework/pgalloc"
)

// Collective is the coordination capability a Domain is built with. Rank 0
// is always the owner: it is the only participant that mutates allocator
// state. All other ranks are peers.
type Collective interface {
	// Rank returns this participant's index; 0 is always the owner.
	Rank() int
	// Size returns the number of participants in the collective.
	Size() int
	// Barrier blocks until every participant has called Barrier for the
	// current round. Used once, after the owner creates the backing
	// file and before peers open it.
	Barrier(ctx context.Context) error
	// BroadcastPointer blocks until every participant has called
	// BroadcastPointer for the current round and returns the value
	// supplied by the participant whose Rank() == root. Only the root's
	// p argument is used; others' are ignored.
	BroadcastPointer(ctx context.Context, root int, p pgalloc.VirtualPointer) (pgalloc.VirtualPointer, error)
}
