// Package transcript parses the newline-delimited JSON session transcripts
// written by the coding assistant and extracts the structured content the
// rest of the pipeline operates on.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"time"
)

// EntryType is the recognized `type` field of a transcript line. Any other
// value (e.g. file-history-snapshot) is ignored at parse time.
type EntryType string

const (
	EntryUser      EntryType = "user"
	EntryAssistant EntryType = "assistant"
)

// BlockType is the `type` field of one assistant content block.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockThinking   BlockType = "thinking"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one element of an assistant message's content array.
// Fields unrelated to Type are populated according to it; Input is the raw
// tool-use input object, kept as a map so callers can walk it for
// file-path-bearing keys without a second schema per tool.
type ContentBlock struct {
	Type    BlockType      `json:"type"`
	Text    string         `json:"text,omitempty"`
	Name    string         `json:"name,omitempty"`
	Input   map[string]any `json:"input,omitempty"`
	Content any            `json:"content,omitempty"`
}

// message is the `message` object carried by both user and assistant
// entries. Content is a plain string for user entries and a content-block
// array for assistant entries; both are preserved raw and decoded lazily
// by the caller via Entry.Text/Entry.Blocks.
type message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// Entry is one parsed transcript line.
type Entry struct {
	Type      EntryType `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	CWD       string    `json:"cwd,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`

	rawMessage message
}

// Text returns a user entry's plain message string, or the empty string
// for non-user entries or entries with non-string content.
func (e *Entry) Text() string {
	if e.Type != EntryUser {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.rawMessage.Content, &s); err != nil {
		return ""
	}
	return s
}

// Blocks returns an assistant entry's content blocks. Unrecognized block
// types decode successfully but are typically skipped by callers.
func (e *Entry) Blocks() []ContentBlock {
	if e.Type != EntryAssistant {
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(e.rawMessage.Content, &blocks); err != nil {
		return nil
	}
	return blocks
}

// entryEnvelope is the on-disk shape used only for unmarshaling; Entry
// keeps the decoded rawMessage field private.
type entryEnvelope struct {
	Type      EntryType `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	CWD       string    `json:"cwd,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`
	Message   message   `json:"message"`
}

// Load reads path and parses every NDJSON line into an Entry, skipping
// blank lines, invalid JSON, and entries whose type is not user or
// assistant.
func Load(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var env entryEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			continue
		}
		if env.Type != EntryUser && env.Type != EntryAssistant {
			continue
		}
		entries = append(entries, &Entry{
			Type:       env.Type,
			SessionID:  env.SessionID,
			Timestamp:  env.Timestamp,
			CWD:        env.CWD,
			GitBranch:  env.GitBranch,
			rawMessage: env.Message,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
