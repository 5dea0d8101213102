package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/ccsync/internal/config"
	"github.com/steveyegge/ccsync/internal/queue"
)

// shellTools are the tool names that execute shell commands; only their
// PostToolUse events are candidates for a gh pr create detection.
var shellTools = map[string]bool{
	"Bash": true,
}

var prURLPattern = regexp.MustCompile(`https://github\.com/[^/\s]+/[^/\s]+/pull/\d+`)

// detectPRCreated implements distilled spec §4.1's post-tool-use
// condition: a shell tool, a "gh pr create" command, and a PR URL in the
// response. Returns the first matching URL.
func detectPRCreated(input hookInput) (string, bool) {
	if !shellTools[input.ToolName] {
		return "", false
	}

	var toolInput struct {
		Command string `json:"command"`
	}
	_ = json.Unmarshal(input.ToolInput, &toolInput)
	if !strings.Contains(toolInput.Command, "gh pr create") {
		return "", false
	}

	prURL := prURLPattern.FindString(string(input.ToolResponse))
	if prURL == "" {
		return "", false
	}
	return prURL, true
}

// newPostToolUseCmd handles Claude Code's PostToolUse event: if the tool
// was a shell command running "gh pr create" and its response contains a
// pull-request URL, enqueues one pr_created record. Otherwise a no-op.
// Always acknowledges.
func newPostToolUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "post-tool-use",
		Short:         "PostToolUse hook — enqueues a pr_created record on gh pr create",
		Hidden:        true,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer emitContinue()

			input := readHookInput()
			prURL, ok := detectPRCreated(input)
			if !ok {
				return nil
			}

			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				fmt.Fprintln(os.Stderr, "ccsync-hook: load config:", err)
				return nil
			}

			q := queue.New(cfg.QueuePath())
			rec := queue.NewPRCreatedRecord(input.SessionID, prURL, input.CWD)
			if err := q.Append(rec); err != nil {
				fmt.Fprintln(os.Stderr, "ccsync-hook: append pr_created record:", err)
			}
			return nil
		},
	}
	return cmd
}
