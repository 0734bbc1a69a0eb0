package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/operator-framework/pgalloc"
	"github.com/operator-framework/pgalloc/allocator"
)

// newDemoCmd drives a single domain through create/allocate/write/read/
// deallocate/destroy, printing each step -- a scriptable equivalent of
// spec.md's round-trip scenario, for manual smoke testing against a real
// backing file or the heap path.
func newDemoCmd() *cobra.Command {
	var path string
	var size uint64

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "create a domain, allocate, write, read back, then tear down",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			debug, _ := cmd.Flags().GetBool("debug")
			opts := []allocator.Option{allocator.WithDebug(debug)}
			if path != "" {
				opts = append(opts, allocator.WithPath(path))
			}

			d, err := allocator.New(ctx, opts...)
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			defer d.Destroy(ctx)

			ptr, err := d.Allocate(ctx, size)
			if err != nil {
				return fmt.Errorf("allocate: %w", err)
			}
			if ptr == pgalloc.NullPtr {
				fmt.Println("allocate returned NullPtr")
				return nil
			}
			fmt.Printf("allocated %d bytes at pointer %d\n", size, ptr)

			buf := make([]byte, size)
			for i := range buf {
				buf[i] = 0xAA
			}
			if err := d.Write(ctx, ptr, buf); err != nil {
				return fmt.Errorf("write: %w", err)
			}

			out := make([]byte, size)
			if err := d.Read(ctx, ptr, out); err != nil {
				return fmt.Errorf("read: %w", err)
			}
			fmt.Printf("round-trip ok: %t\n", string(out) == string(buf))

			if err := d.Deallocate(ctx, ptr); err != nil {
				return fmt.Errorf("deallocate: %w", err)
			}
			fmt.Println("deallocated")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "backing file path; empty means heap-backed")
	cmd.Flags().Uint64Var(&size, "size", uint64(pgalloc.PageSize), "bytes to allocate")
	return cmd
}
