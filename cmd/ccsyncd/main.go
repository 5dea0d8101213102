// Command ccsyncd is the Queue Processor daemon: the long-running
// process that drains the durable queue, dispatching session_stop
// records to the Session Processor and pr_created records to the
// PR-Created Handler.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the "linear" tracker factory as a side effect.
	_ "github.com/steveyegge/ccsync/internal/tracker/linear"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ccsyncd:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ccsyncd",
		Short:         "Queue Processor daemon for ccsync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a YAML config file")
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the ccsyncd version",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
