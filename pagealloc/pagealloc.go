// Package pagealloc implements PageAllocator: page-granular allocation
// over a Bitmap and a FileStore, growing the backing file on demand.
package pagealloc

import (
	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/bitmap"
	"github.com/operator-framework/pgalloc/filestore"
	"github.com/operator-framework/pgalloc/internal/errs"
)

// PageAllocator hands out page-aligned VirtualPointers backed by a file.
type PageAllocator struct {
	store *filestore.FileStore
	bits  *bitmap.Bitmap
}

// New builds a PageAllocator over store, sizing the bitmap to the store's
// current file length.
func New(store *filestore.FileStore) *PageAllocator {
	return &PageAllocator{
		store: store,
		bits:  bitmap.New(int(store.FileBytes() / pgalloc.PageSize)),
	}
}

// Allocate reserves ceil(sizeBytes/PageSize) contiguous pages, growing the
// backing file and retrying as needed, and returns the byte offset of the
// first page. sizeBytes == 0 returns NullPtr without any state change.
func (a *PageAllocator) Allocate(sizeBytes uint64) (pgalloc.VirtualPointer, error) {
	if sizeBytes == 0 {
		return pgalloc.NullPtr, nil
	}
	n := int(pgalloc.PageCount(sizeBytes))

	for {
		if start, ok := a.bits.FindFirstClear(n); ok {
			return pgalloc.VirtualPointer(uint64(start) * pgalloc.PageSize), nil
		}
		if _, err := a.store.Grow(); err != nil {
			return pgalloc.NullPtr, err
		}
		a.bits.Resize(int(a.store.FileBytes() / pgalloc.PageSize))
	}
}

// Deallocate clears the page range occupied by an allocation of sizeBytes
// starting at ptr. ptr must be PageSize-aligned.
//
// count is computed as the half-open ceiling ⌈sizeBytes/PageSize⌉ and the
// cleared range is the half-open [start, start+count) -- equivalent to the
// original's inclusive [start, start+count-1] range, but without its
// off-by-one trap when count is computed incorrectly as (size-1)/PageSize.
func (a *PageAllocator) Deallocate(ptr pgalloc.VirtualPointer, sizeBytes uint64) {
	errs.Assertf(uint64(ptr)%pgalloc.PageSize == 0, "pagealloc: deallocate of unaligned pointer %d", ptr)

	start := int(uint64(ptr) / pgalloc.PageSize)
	count := int(pgalloc.PageCount(sizeBytes))
	a.bits.ClearRange(start, start+count)
}

// FileBytes reports the current backing file length, for tests asserting
// growth behavior.
func (a *PageAllocator) FileBytes() uint64 {
	return a.store.FileBytes()
}
