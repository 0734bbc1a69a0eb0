// Package errs defines the allocator's error taxonomy: typed error structs,
// most wrapping an underlying cause, following the category-error
// idiom the registry loader uses for its own load-error types.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// allocationFailure covers out-of-memory conditions for in-process
// bookkeeping (registry node, bitmap buffer) or a failed bitmap resize.
// filestore also reports a failure to open the backing file as one.
type allocationFailure struct {
	cause error
}

func (e *allocationFailure) Error() string {
	return fmt.Sprintf("allocation failed: %v", e.cause)
}

func (e *allocationFailure) Unwrap() error { return e.cause }

// NewAllocationFailure wraps cause as an AllocationFailure.
func NewAllocationFailure(cause error) error {
	return &allocationFailure{cause: errors.WithStack(cause)}
}

// fileGrowthFailure covers a rejected ftruncate/mmap-resize.
type fileGrowthFailure struct {
	path  string
	cause error
}

func (e *fileGrowthFailure) Error() string {
	return fmt.Sprintf("failed to grow backing file %q: %v", e.path, e.cause)
}

func (e *fileGrowthFailure) Unwrap() error { return e.cause }

// NewFileGrowthFailure wraps cause as a FileGrowthFailure for path.
func NewFileGrowthFailure(path string, cause error) error {
	return &fileGrowthFailure{path: path, cause: errors.WithStack(cause)}
}

// IOFailure covers a short or failing positional read/write. It is treated
// as fatal by callers: partial I/O would silently corrupt tensor data and
// no recovery is defined.
type IOFailure struct {
	Op     string
	Ptr    uint64
	Wanted int
	Got    int
	cause  error
}

func (e *IOFailure) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Ptr, e.cause)
	}
	return fmt.Sprintf("%s at offset %d: short transfer, wanted %d bytes got %d", e.Op, e.Ptr, e.Wanted, e.Got)
}

func (e *IOFailure) Unwrap() error { return e.cause }

// NewIOFailure reports a failing positional I/O call.
func NewIOFailure(op string, ptr uint64, cause error) error {
	return &IOFailure{Op: op, Ptr: ptr, cause: errors.WithStack(cause)}
}

// NewShortIOFailure reports a positional I/O call that transferred fewer
// bytes than requested without an accompanying error.
func NewShortIOFailure(op string, ptr uint64, wanted, got int) error {
	return &IOFailure{Op: op, Ptr: ptr, Wanted: wanted, Got: got}
}

// InvariantViolation marks a programming error: a null pointer passed to
// read/write/deallocate, an unaligned pointer passed to deallocate, or
// deallocate of an unknown pointer. These are enforced by panic, not by a
// returned error, per the allocator's invariant-violation contract.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return e.Msg }

// Assertf panics with an InvariantViolation if cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantViolation{Msg: fmt.Sprintf(format, args...)})
	}
}
