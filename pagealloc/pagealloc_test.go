package pagealloc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/filestore"
)

func newStore(t *testing.T) *filestore.FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domain.dat")
	fs, err := filestore.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { fs.CloseAndUnlink() })
	return fs
}

func TestAllocateZeroSizeReturnsNullWithoutMutation(t *testing.T) {
	pa := New(newStore(t))
	ptr, err := pa.Allocate(0)
	require.NoError(t, err)
	require.Equal(t, pgalloc.NullPtr, ptr)
	require.Equal(t, 0, pa.bits.PopCount())
}

func TestAllocateFirstPageAtOffsetZero(t *testing.T) {
	pa := New(newStore(t))
	ptr, err := pa.Allocate(pgalloc.PageSize)
	require.NoError(t, err)
	require.Equal(t, pgalloc.VirtualPointer(0), ptr)
}

func TestAllocateTriggersGrowth(t *testing.T) {
	pa := New(newStore(t))
	_, err := pa.Allocate(pgalloc.PageSize)
	require.NoError(t, err)

	ptr2, err := pa.Allocate(pgalloc.PageSize)
	require.NoError(t, err)
	require.Equal(t, pgalloc.VirtualPointer(pgalloc.PageSize), ptr2)
	require.Equal(t, 2*pgalloc.PageSize, pa.FileBytes())
}

func TestFirstFitDeterminism(t *testing.T) {
	pa := New(newStore(t))
	var ptrs []pgalloc.VirtualPointer
	for i := 0; i < 3; i++ {
		p, err := pa.Allocate(pgalloc.PageSize)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.Equal(t, pgalloc.VirtualPointer(0), ptrs[0])
	require.Equal(t, pgalloc.VirtualPointer(pgalloc.PageSize), ptrs[1])
	require.Equal(t, pgalloc.VirtualPointer(2*pgalloc.PageSize), ptrs[2])

	pa.Deallocate(ptrs[1], pgalloc.PageSize)

	next, err := pa.Allocate(pgalloc.PageSize)
	require.NoError(t, err)
	require.Equal(t, ptrs[1], next)
}

func TestContiguityNotSatisfiedByNonAdjacentFreePages(t *testing.T) {
	pa := New(newStore(t))
	var ptrs []pgalloc.VirtualPointer
	for i := 0; i < 5; i++ {
		p, err := pa.Allocate(pgalloc.PageSize)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	pa.Deallocate(ptrs[1], pgalloc.PageSize)
	pa.Deallocate(ptrs[3], pgalloc.PageSize)

	before := pa.FileBytes()
	two, err := pa.Allocate(2 * pgalloc.PageSize)
	require.NoError(t, err)
	require.NotEqual(t, ptrs[1], two)
	require.NotEqual(t, ptrs[3], two)
	// Pages 5-7 of the 8-page file are still free, so the request fits at
	// the tail without growth.
	require.Equal(t, pgalloc.VirtualPointer(5*pgalloc.PageSize), two)
	require.Equal(t, before, pa.FileBytes())
}

func TestDeallocateUnalignedPointerPanics(t *testing.T) {
	pa := New(newStore(t))
	require.Panics(t, func() {
		pa.Deallocate(pgalloc.VirtualPointer(7), pgalloc.PageSize)
	})
}
