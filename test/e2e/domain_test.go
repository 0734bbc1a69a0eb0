package e2e_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/allocator"
)

var _ = Describe("a disk-backed allocation domain", func() {
	var (
		ctx  context.Context
		dir  string
		path string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "domain.dat")
	})

	It("grows the backing file to satisfy a second page request", func() {
		d, err := allocator.New(ctx, allocator.WithPath(path))
		Expect(err).NotTo(HaveOccurred())
		defer d.Destroy(ctx)

		first, err := d.Allocate(ctx, pgalloc.PageSize)
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(Equal(pgalloc.VirtualPointer(0)))

		second, err := d.Allocate(ctx, pgalloc.PageSize)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(pgalloc.VirtualPointer(pgalloc.PageSize)))
	})

	It("does not satisfy a multi-page request from non-adjacent free pages", func() {
		d, err := allocator.New(ctx, allocator.WithPath(path))
		Expect(err).NotTo(HaveOccurred())
		defer d.Destroy(ctx)

		ptrs := make([]pgalloc.VirtualPointer, 5)
		for i := range ptrs {
			p, err := d.Allocate(ctx, pgalloc.PageSize)
			Expect(err).NotTo(HaveOccurred())
			ptrs[i] = p
		}

		Expect(d.Deallocate(ctx, ptrs[1])).To(Succeed())
		Expect(d.Deallocate(ctx, ptrs[3])).To(Succeed())

		two, err := d.Allocate(ctx, 2*pgalloc.PageSize)
		Expect(err).NotTo(HaveOccurred())
		Expect(two).NotTo(Equal(ptrs[1]))
		Expect(two).NotTo(Equal(ptrs[3]))
	})

	It("removes the backing file on destroy", func() {
		d, err := allocator.New(ctx, allocator.WithPath(path))
		Expect(err).NotTo(HaveOccurred())

		_, err = d.Allocate(ctx, pgalloc.PageSize)
		Expect(err).NotTo(HaveOccurred())

		Expect(d.Destroy(ctx)).To(Succeed())

		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})

var _ = Describe("a heap-backed allocation domain", func() {
	It("round-trips a write through read with no intervening write", func() {
		ctx := context.Background()
		d, err := allocator.New(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer d.Destroy(ctx)

		ptr, err := d.Allocate(ctx, 1024)
		Expect(err).NotTo(HaveOccurred())

		payload := make([]byte, 1024)
		for i := range payload {
			payload[i] = 0xAA
		}
		Expect(d.Write(ctx, ptr, payload)).To(Succeed())

		out := make([]byte, 1024)
		Expect(d.Read(ctx, ptr, out)).To(Succeed())
		Expect(out).To(Equal(payload))
	})

	It("returns NullPtr for a zero-size allocation without tracking it", func() {
		ctx := context.Background()
		d, err := allocator.New(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer d.Destroy(ctx)

		ptr, err := d.Allocate(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ptr).To(Equal(pgalloc.NullPtr))
	})
})
