// Package heapalloc implements the alternative allocation path used when
// an allocation domain has no backing file configured: regions live on the
// Go heap and I/O degrades to a copy.
//
// Go has no way to hand a raw heap address out as an integer the way the
// original C allocator does, so HeapAllocator mints a monotonically
// increasing synthetic VirtualPointer per allocation and keeps the actual
// backing []byte in a side table keyed by that pointer.
package heapalloc

import (
	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/internal/errs"
)

// HeapAllocator hands out synthetic pointers backed by heap-allocated byte
// slices.
type HeapAllocator struct {
	regions map[pgalloc.VirtualPointer][]byte
	next    uint64
}

// New returns an empty HeapAllocator.
func New() *HeapAllocator {
	return &HeapAllocator{
		regions: make(map[pgalloc.VirtualPointer][]byte),
		next:    1, // 0 is reserved; NullPtr is the all-ones sentinel
	}
}

// Allocate returns a fresh synthetic pointer backed by a zeroed sizeBytes
// region. sizeBytes == 0 returns NullPtr without any state change.
func (h *HeapAllocator) Allocate(sizeBytes uint64) pgalloc.VirtualPointer {
	if sizeBytes == 0 {
		return pgalloc.NullPtr
	}
	ptr := pgalloc.VirtualPointer(h.next)
	h.next++
	h.regions[ptr] = make([]byte, sizeBytes)
	return ptr
}

// Deallocate releases the region backing ptr. ptr must have been returned
// by Allocate and not yet deallocated.
func (h *HeapAllocator) Deallocate(ptr pgalloc.VirtualPointer) {
	_, ok := h.regions[ptr]
	errs.Assertf(ok, "heapalloc: deallocate of unknown pointer %d", ptr)
	delete(h.regions, ptr)
}

// Bytes returns the backing slice for ptr, for the I/O shim's memcpy path.
func (h *HeapAllocator) Bytes(ptr pgalloc.VirtualPointer) []byte {
	region, ok := h.regions[ptr]
	errs.Assertf(ok, "heapalloc: access to untracked pointer %d", ptr)
	return region
}
