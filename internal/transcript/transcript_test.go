package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSkipsBlankInvalidAndUnrecognizedTypes(t *testing.T) {
	path := writeTranscript(t,
		"",
		`{"type":"file-history-snapshot","session_id":"s1"}`,
		`not json`,
		`{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:00Z","cwd":"/p","message":{"role":"user","content":"hello"}}`,
	)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, EntryUser, entries[0].Type)
	assert.Equal(t, "hello", entries[0].Text())
}

func TestEntryBlocksDecodesAssistantContent(t *testing.T) {
	path := writeTranscript(t,
		`{"type":"assistant","session_id":"s1","timestamp":"2025-01-01T00:00:01Z","message":{"role":"assistant","content":[{"type":"text","text":"ok"},{"type":"tool_use","name":"Bash","input":{"command":"ls"}}]}}`,
	)
	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	blocks := entries[0].Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, BlockText, blocks[0].Type)
	assert.Equal(t, "ok", blocks[0].Text)
	assert.Equal(t, BlockToolUse, blocks[1].Type)
	assert.Equal(t, "Bash", blocks[1].Name)
	assert.Equal(t, "ls", blocks[1].Input["command"])
}

func TestFilterNoiseDropsSystemReminderAndSubagentPaths(t *testing.T) {
	entries := []*Entry{
		{Type: EntryUser, CWD: "/p", rawMessage: rawUserMessage("real request")},
		{Type: EntryUser, CWD: "/p", rawMessage: rawUserMessage("<system-reminder>ignore</system-reminder>")},
		{Type: EntryUser, CWD: "/p/subagents/x", rawMessage: rawUserMessage("nested agent chatter")},
	}

	filtered := FilterNoise(entries)
	require.Len(t, filtered, 1)
	assert.Equal(t, "real request", filtered[0].Text())
}

func TestFilterNoiseIsIdempotent(t *testing.T) {
	entries := []*Entry{
		{Type: EntryUser, CWD: "/p", rawMessage: rawUserMessage("keep me")},
		{Type: EntryUser, CWD: "/p", rawMessage: rawUserMessage("<local-command>noop</local-command>")},
	}
	once := FilterNoise(entries)
	twice := FilterNoise(once)
	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Text(), twice[i].Text())
	}
}

func TestExtractBuildsPrimaryRequestAndKeywords(t *testing.T) {
	entries := []*Entry{
		{Type: EntryUser, SessionID: "s1", CWD: "/home/u/my-project", rawMessage: rawUserMessage("fix the login redirect bug")},
		{Type: EntryUser, SessionID: "s1", CWD: "/home/u/my-project", rawMessage: rawUserMessage("also check the signup flow")},
		{
			Type:      EntryAssistant,
			SessionID: "s1",
			rawMessage: rawAssistantMessage([]ContentBlock{
				{Type: BlockToolUse, Name: "Edit", Input: map[string]any{"file_path": "/home/u/my-project/auth/login.go"}},
			}),
		},
	}

	content := Extract(entries)
	assert.Equal(t, "fix the login redirect bug", content.PrimaryRequest)
	assert.Equal(t, []string{"also check the signup flow"}, content.AdditionalContext)
	assert.Equal(t, "my-project", content.ProjectName)
	assert.Equal(t, "s1", content.SessionID)
	_, hasLogin := content.Keywords["login"]
	assert.True(t, hasLogin, "keyword from user text and from file base name")
	_, hasProject := content.Keywords["my-project"]
	assert.True(t, hasProject)
	_, hasToolPattern := content.ToolPatterns["edit"]
	assert.True(t, hasToolPattern)
	_, hasFilePath := content.FilePaths["/home/u/my-project/auth/login.go"]
	assert.True(t, hasFilePath)
}

func rawUserMessage(text string) message {
	return message{Role: "user", Content: mustMarshal(text)}
}

func rawAssistantMessage(blocks []ContentBlock) message {
	return message{Role: "assistant", Content: mustMarshal(blocks)}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(b)
}
