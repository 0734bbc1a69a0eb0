// Package filestore owns the backing file descriptor for a disk-backed
// allocation domain: it grows the file according to the doubling /
// fixed-step policy of spec §4.3 (grounded on bbolt's mmap-doubling growth
// strategy) and performs positional read/write with an exactly-N-bytes
// contract.
package filestore

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/internal/errs"
)

// FileStore owns one open backing file and its current logical length.
type FileStore struct {
	file      *os.File
	path      string
	fileBytes uint64
}

// Create creates (or truncates) the file at path, sized to one page, and
// returns a FileStore for it. Called once by the owning rank.
func Create(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return nil, errs.NewAllocationFailure(err)
	}
	fs := &FileStore{file: f, path: path}
	if err := fs.truncateTo(pgalloc.PageSize); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return fs, nil
}

// Open opens an existing backing file at path read-write, for a peer rank
// joining after the owner's startup barrier. size is the file length the
// owner already established.
func Open(path string, size uint64) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o640)
	if err != nil {
		return nil, errs.NewAllocationFailure(err)
	}
	return &FileStore{file: f, path: path, fileBytes: size}, nil
}

// Path returns the filesystem path backing this store.
func (s *FileStore) Path() string { return s.path }

// FileBytes returns the current logical file length.
func (s *FileStore) FileBytes() uint64 { return s.fileBytes }

// Grow doubles FileBytes while it is at most GrowSize, otherwise adds
// GrowSize, extends the file to match, and returns the new size.
func (s *FileStore) Grow() (uint64, error) {
	var next uint64
	if s.fileBytes <= pgalloc.GrowSize {
		next = s.fileBytes * 2
	} else {
		next = s.fileBytes + pgalloc.GrowSize
	}
	if err := s.truncateTo(next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *FileStore) truncateTo(size uint64) error {
	if err := unix.Ftruncate(int(s.file.Fd()), int64(size)); err != nil {
		return errs.NewFileGrowthFailure(s.path, err)
	}
	s.fileBytes = size
	return nil
}

// PreadExact reads exactly len(buf) bytes from offset. Short reads are
// fatal: no partial-success semantics are defined.
func (s *FileStore) PreadExact(offset uint64, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := unix.Pread(int(s.file.Fd()), buf[read:], int64(offset)+int64(read))
		if err != nil {
			return errs.NewIOFailure("pread", offset, err)
		}
		if n == 0 {
			return errs.NewShortIOFailure("pread", offset, len(buf), read)
		}
		read += n
	}
	return nil
}

// PwriteExact writes exactly len(buf) bytes to offset. Short writes are
// fatal.
func (s *FileStore) PwriteExact(offset uint64, buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := unix.Pwrite(int(s.file.Fd()), buf[written:], int64(offset)+int64(written))
		if err != nil {
			return errs.NewIOFailure("pwrite", offset, err)
		}
		if n == 0 {
			return errs.NewShortIOFailure("pwrite", offset, len(buf), written)
		}
		written += n
	}
	return nil
}

// Close closes the backing file descriptor without removing it.
func (s *FileStore) Close() error {
	return s.file.Close()
}

// CloseAndUnlink closes the backing file and removes it from the
// filesystem. Called by the owner during destroy; peers never unlink.
func (s *FileStore) CloseAndUnlink() error {
	closeErr := s.file.Close()
	removeErr := os.Remove(s.path)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}
