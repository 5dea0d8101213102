package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// hookInput is the JSON Claude Code sends on standard input to a hook.
// Both hook variants share this shape; each command only reads the
// fields distilled spec §4.1 names for it.
type hookInput struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd"`
	HookEventName  string          `json:"hook_event_name"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	ToolResponse   json.RawMessage `json:"tool_response"`
}

// readHookInput reads and parses stdin. A malformed or empty payload
// yields a zero-value hookInput rather than an error — per the failure
// policy, a hook command proceeds regardless and still emits "continue".
func readHookInput() hookInput {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ccsync-hook: read stdin:", err)
		return hookInput{}
	}
	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		fmt.Fprintln(os.Stderr, "ccsync-hook: parse stdin:", err)
	}
	return input
}

// emitContinue writes the hook stream protocol's sole output shape. The
// core never emits "block" (distilled spec §6).
func emitContinue() {
	_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"decision": "continue"})
}
