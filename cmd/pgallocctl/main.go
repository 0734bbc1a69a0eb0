// Command pgallocctl is a small operational surface over the allocator
// façade, following the cobra root-command wiring of cmd/opm: a single
// demo subcommand drives one domain through the full create/allocate/
// write/read/deallocate/destroy sequence, useful for manually exercising
// a domain or smoke-testing its growth and teardown behavior against a
// real file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/pgalloc/internal/alloclog"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("pgallocctl failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pgallocctl",
		Short: "exercise a pgalloc allocation domain from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			alloclog.SetDebug(debug)
			return nil
		},
	}
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.AddCommand(newDemoCmd())
	return root
}
