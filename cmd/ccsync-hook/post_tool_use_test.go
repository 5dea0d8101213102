package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPRCreatedMatchesShellGHCommand(t *testing.T) {
	input := hookInput{
		ToolName:     "Bash",
		ToolInput:    json.RawMessage(`{"command":"gh pr create --title x --body y"}`),
		ToolResponse: json.RawMessage(`created https://github.com/acme/widgets/pull/42`),
	}
	url, ok := detectPRCreated(input)
	assert.True(t, ok)
	assert.Equal(t, "https://github.com/acme/widgets/pull/42", url)
}

func TestDetectPRCreatedIgnoresNonShellTool(t *testing.T) {
	input := hookInput{
		ToolName:     "Write",
		ToolInput:    json.RawMessage(`{"command":"gh pr create"}`),
		ToolResponse: json.RawMessage(`https://github.com/acme/widgets/pull/42`),
	}
	_, ok := detectPRCreated(input)
	assert.False(t, ok)
}

func TestDetectPRCreatedIgnoresOtherCommands(t *testing.T) {
	input := hookInput{
		ToolName:     "Bash",
		ToolInput:    json.RawMessage(`{"command":"gh pr list"}`),
		ToolResponse: json.RawMessage(`https://github.com/acme/widgets/pull/42`),
	}
	_, ok := detectPRCreated(input)
	assert.False(t, ok)
}

func TestDetectPRCreatedRequiresMatchingURL(t *testing.T) {
	input := hookInput{
		ToolName:     "Bash",
		ToolInput:    json.RawMessage(`{"command":"gh pr create"}`),
		ToolResponse: json.RawMessage(`no url here`),
	}
	_, ok := detectPRCreated(input)
	assert.False(t, ok)
}
