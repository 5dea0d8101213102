package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/ccsync/internal/config"
	"github.com/steveyegge/ccsync/internal/queue"
)

// newSessionStopCmd handles Claude Code's Stop event: it always appends
// one session_stop record and acknowledges.
func newSessionStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "session-stop",
		Short:         "Stop hook — enqueues a session_stop record",
		Hidden:        true,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer emitContinue()

			input := readHookInput()
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, "ccsync-hook: load config:", err)
				return nil
			}

			q := queue.New(cfg.QueuePath())
			rec := queue.NewSessionStopRecord(input.SessionID, input.TranscriptPath, input.CWD)
			if err := q.Append(rec); err != nil {
				fmt.Fprintln(os.Stderr, "ccsync-hook: append session_stop record:", err)
			}
			return nil
		},
	}
	return cmd
}
