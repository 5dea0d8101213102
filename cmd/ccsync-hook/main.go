// Command ccsync-hook is the Event Hooks binary: a small, fast process
// invoked once per Claude Code hook firing, converting a boundary event
// into exactly one queue record and returning a non-blocking
// acknowledgment — distilled spec §4.1.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ccsync-hook:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ccsync-hook",
		Short:         "Claude Code event hook handlers for ccsync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a YAML config file")

	cmd.AddCommand(newSessionStopCmd())
	cmd.AddCommand(newPostToolUseCmd())
	return cmd
}
