// Package allocator implements the public allocator façade described by
// spec §4.6: the single entry point a tensor layer uses to create an
// allocation domain, allocate/read/write/deallocate tracked regions, and
// tear the domain down. It chooses between the page-granular, file-backed
// path and the heap-backed path, guards its bitmap/file-size/registry state
// with one mutex per spec §5, and defers to an injected collective.Collective
// for cross-rank agreement.
package allocator

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/collective"
	"github.com/operator-framework/pgalloc/filestore"
	"github.com/operator-framework/pgalloc/heapalloc"
	"github.com/operator-framework/pgalloc/internal/alloclog"
	"github.com/operator-framework/pgalloc/internal/errs"
	"github.com/operator-framework/pgalloc/internal/ioshim"
	"github.com/operator-framework/pgalloc/pagealloc"
	"github.com/operator-framework/pgalloc/registry"
)

// Domain is one allocation domain handle, scoped to a single rank. Only the
// handle whose Collective reports Rank() == 0 (the owner) mutates bitmap,
// file-size, or registry state; every other rank's handle is read-only
// beyond broadcasting.
type Domain struct {
	mu   sync.Mutex
	coll collective.Collective
	log  logrus.FieldLogger

	path  string
	store *filestore.FileStore
	page  *pagealloc.PageAllocator
	heap  *heapalloc.HeapAllocator
	reg   *registry.Registry
}

func (d *Domain) isOwner() bool { return d.coll.Rank() == 0 }

// Path returns the filesystem path this domain was created with, if any.
func (d *Domain) Path() (string, bool) {
	if d.path == "" {
		return "", false
	}
	return d.path, true
}

// Allocate reserves sizeBytes and returns the resulting pointer. Every
// participant must call Allocate for the call sequence to stay in lock
// step: the owner dispatches to the page or heap allocator and inserts a
// TrackedBlock on success under its mutex; every participant (owner
// included) then receives the broadcast result. A zero sizeBytes returns
// NullPtr without touching any state, on every rank.
func (d *Domain) Allocate(ctx context.Context, sizeBytes uint64) (pgalloc.VirtualPointer, error) {
	mine := pgalloc.NullPtr
	var ownErr error
	if d.isOwner() {
		mine, ownErr = d.allocateLocal(sizeBytes)
	}

	got, err := d.coll.BroadcastPointer(ctx, 0, mine)
	if err != nil {
		return pgalloc.NullPtr, err
	}
	if d.isOwner() && ownErr != nil {
		// The broadcast already carried NullPtr so peers progress; the
		// owner's caller still observes the real failure.
		return pgalloc.NullPtr, ownErr
	}
	return got, nil
}

func (d *Domain) allocateLocal(sizeBytes uint64) (pgalloc.VirtualPointer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ptr pgalloc.VirtualPointer
	var err error
	if d.page != nil {
		ptr, err = d.page.Allocate(sizeBytes)
	} else {
		ptr = d.heap.Allocate(sizeBytes)
	}
	if err != nil {
		d.log.WithError(err).Warn("allocate failed")
		return pgalloc.NullPtr, err
	}
	if ptr != pgalloc.NullPtr {
		d.reg.Insert(pgalloc.TrackedBlock{Pointer: ptr, SizeBytes: sizeBytes})
	}
	return ptr, nil
}

// Read fills buf from the region at ptr. Every rank executes this locally;
// the mutex is not held, so callers must not race an overlapping write.
func (d *Domain) Read(_ context.Context, ptr pgalloc.VirtualPointer, buf []byte) error {
	errs.Assertf(ptr != pgalloc.NullPtr, "allocator: read of NullPtr")
	if err := d.backing().Read(ptr, buf); err != nil {
		alloclog.Fatal(d.log, err, "fatal I/O failure on read")
	}
	return nil
}

// Write copies buf into the region at ptr. See Read for the locking
// contract.
func (d *Domain) Write(_ context.Context, ptr pgalloc.VirtualPointer, buf []byte) error {
	errs.Assertf(ptr != pgalloc.NullPtr, "allocator: write of NullPtr")
	if err := d.backing().Write(ptr, buf); err != nil {
		alloclog.Fatal(d.log, err, "fatal I/O failure on write")
	}
	return nil
}

func (d *Domain) backing() ioshim.Backing {
	return ioshim.Backing{Store: d.store, Heap: d.heap}
}

// Deallocate releases ptr. Peers no-op, per spec: only the owner tracks
// state, so only the owner can know whether ptr is live.
func (d *Domain) Deallocate(_ context.Context, ptr pgalloc.VirtualPointer) error {
	if !d.isOwner() {
		return nil
	}
	errs.Assertf(ptr != pgalloc.NullPtr, "allocator: deallocate of NullPtr")

	d.mu.Lock()
	defer d.mu.Unlock()

	block, ok := d.reg.Find(ptr)
	errs.Assertf(ok, "allocator: deallocate of untracked pointer %d", ptr)
	d.reg.Remove(ptr)
	if d.page != nil {
		d.page.Deallocate(ptr, block.SizeBytes)
	} else {
		d.heap.Deallocate(ptr)
	}
	return nil
}

// Destroy tears the domain down. Peers release only their local file
// handle (no unlink). The owner deallocates every remaining tracked block,
// then closes and unlinks the backing file. Destroy is idempotent on a nil
// Domain.
func (d *Domain) Destroy(_ context.Context) error {
	if d == nil {
		return nil
	}
	if !d.isOwner() {
		if d.store != nil {
			if err := d.store.Close(); err != nil {
				d.log.WithError(err).Warn("destroy: peer file close failed")
			}
		}
		return nil
	}

	d.mu.Lock()
	d.reg.IterSafeForRemoval(func(b pgalloc.TrackedBlock) {
		d.reg.Remove(b.Pointer)
		if d.page != nil {
			d.page.Deallocate(b.Pointer, b.SizeBytes)
		} else {
			d.heap.Deallocate(b.Pointer)
		}
	})
	d.mu.Unlock()

	if d.store != nil {
		if err := d.store.CloseAndUnlink(); err != nil {
			d.log.WithError(err).Warn("destroy: file close/unlink failed")
		}
	}
	return nil
}
