// Package registry implements BlockRegistry: an ordered, associative
// container mapping a live VirtualPointer to its TrackedBlock. The
// ordering requirement exists only to make teardown iteration
// deterministic for tests; it is backed by tidwall/btree's generic
// in-memory B-tree rather than a hand-rolled red-black tree.
package registry

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/operator-framework/pgalloc"
)

// Registry is the ordered pointer -> TrackedBlock map described by
// spec §4.2.
type Registry struct {
	tree btree.Map[pgalloc.VirtualPointer, pgalloc.TrackedBlock]
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Insert records block. It panics if a block is already registered for
// block.Pointer -- the façade only calls Insert for a pointer it just
// minted from the bitmap or heap, so a collision indicates a bookkeeping bug.
func (r *Registry) Insert(block pgalloc.TrackedBlock) {
	if _, exists := r.tree.Get(block.Pointer); exists {
		panic(fmt.Sprintf("registry: pointer %d already tracked", block.Pointer))
	}
	r.tree.Set(block.Pointer, block)
}

// Find returns the TrackedBlock registered for ptr, if any.
func (r *Registry) Find(ptr pgalloc.VirtualPointer) (pgalloc.TrackedBlock, bool) {
	return r.tree.Get(ptr)
}

// Remove deletes the entry for ptr. It is a no-op if ptr is not tracked.
func (r *Registry) Remove(ptr pgalloc.VirtualPointer) {
	r.tree.Delete(ptr)
}

// Len reports the number of live tracked blocks.
func (r *Registry) Len() int {
	return r.tree.Len()
}

// IterSafeForRemoval walks the tracked blocks in pointer order, invoking
// visit for each. visit may remove the yielded block (or any other) from
// the registry during the call; the walk snapshots keys up front so
// removal never perturbs it, mirroring the teardown pattern of copying a
// key slice before mutating the backing map.
func (r *Registry) IterSafeForRemoval(visit func(pgalloc.TrackedBlock)) {
	keys := make([]pgalloc.VirtualPointer, 0, r.tree.Len())
	r.tree.Scan(func(key pgalloc.VirtualPointer, _ pgalloc.TrackedBlock) bool {
		keys = append(keys, key)
		return true
	})
	for _, k := range keys {
		if block, ok := r.tree.Get(k); ok {
			visit(block)
		}
	}
}
