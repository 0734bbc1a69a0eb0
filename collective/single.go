package collective

import (
	"context"

	"github.com/operator-framework/pgalloc"
)

// Single is the default, single-rank Collective: Barrier and
// BroadcastPointer are no-ops, since there is exactly one participant to
// agree with.
type Single struct{}

var _ Collective = Single{}

func (Single) Rank() int { return 0 }
func (Single) Size() int { return 1 }

func (Single) Barrier(ctx context.Context) error {
	return ctx.Err()
}

func (Single) BroadcastPointer(ctx context.Context, _ int, p pgalloc.VirtualPointer) (pgalloc.VirtualPointer, error) {
	if err := ctx.Err(); err != nil {
		return pgalloc.NullPtr, err
	}
	return p, nil
}
