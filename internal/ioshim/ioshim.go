// Package ioshim is the single dispatch point between a tracked region's
// logical read/write and the concrete transfer mechanism: positional file
// I/O for a disk-backed domain, or an in-process copy for a heap-backed
// one. It isolates the file/heap dichotomy from the allocator façade.
package ioshim

import (
	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/filestore"
	"github.com/operator-framework/pgalloc/heapalloc"
)

// Backing is satisfied by either a file-backed or heap-backed domain.
type Backing struct {
	Store *filestore.FileStore // nil when heap-backed
	Heap  *heapalloc.HeapAllocator
}

// Read fills buf from the region at ptr.
func (b Backing) Read(ptr pgalloc.VirtualPointer, buf []byte) error {
	if b.Store != nil {
		return b.Store.PreadExact(uint64(ptr), buf)
	}
	copy(buf, b.Heap.Bytes(ptr))
	return nil
}

// Write copies buf into the region at ptr.
func (b Backing) Write(ptr pgalloc.VirtualPointer, buf []byte) error {
	if b.Store != nil {
		return b.Store.PwriteExact(uint64(ptr), buf)
	}
	copy(b.Heap.Bytes(ptr), buf)
	return nil
}
