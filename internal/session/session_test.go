package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/ccsync/internal/matcher"
	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/tracker"
)

type fakeTracker struct {
	tracker.IssueTracker
	issuesByID    map[string]tracker.Issue
	searchResult  []tracker.Issue
	created       []tracker.NewIssueParams
	comments      []string
	assigned      []string
	states        []string
	labelsSet     [][]string
	linksAttached []string
}

func (f *fakeTracker) GetIssue(_ context.Context, id string) (*tracker.Issue, error) {
	issue, ok := f.issuesByID[id]
	if !ok {
		return nil, nil
	}
	return &issue, nil
}

func (f *fakeTracker) Search(_ context.Context, _ tracker.SearchOptions) ([]tracker.Issue, error) {
	return f.searchResult, nil
}

func (f *fakeTracker) CreateIssue(_ context.Context, params tracker.NewIssueParams) (*tracker.Issue, error) {
	f.created = append(f.created, params)
	return &tracker.Issue{ID: "new-1", Identifier: "NEW-1", Title: params.Title}, nil
}

func (f *fakeTracker) AddComment(_ context.Context, issueID, body string) error {
	f.comments = append(f.comments, body)
	return nil
}

func (f *fakeTracker) Assign(_ context.Context, issueID, userID string) error {
	f.assigned = append(f.assigned, userID)
	return nil
}

func (f *fakeTracker) UpdateState(_ context.Context, issueID, stateID string) error {
	f.states = append(f.states, stateID)
	return nil
}

func (f *fakeTracker) SetLabels(_ context.Context, issueID string, labelIDs []string) error {
	f.labelsSet = append(f.labelsSet, labelIDs)
	return nil
}

func (f *fakeTracker) AttachLink(_ context.Context, issueID, url, title string) error {
	f.linksAttached = append(f.linksAttached, url)
	return nil
}

func writeTestTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testCaches() *Caches {
	return &Caches{
		Viewer: &tracker.User{ID: "u1", Name: "Bot"},
		Team:   &tracker.Team{ID: "team1", Name: "Eng"},
		Labels: []tracker.Label{{ID: "l-bug", Name: "Bug"}, {ID: "l-mobile", Name: "Mobile"}},
		States: []tracker.WorkflowState{
			{ID: "s-progress", Name: "In Progress", Type: tracker.StateStarted},
			{ID: "s-review", Name: "In Review", Type: tracker.StateStarted},
		},
	}
}

func TestHandleSessionStopBranchHitPostsCommentNoNewIssue(t *testing.T) {
	path := writeTestTranscript(t,
		`{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:00Z","cwd":"/p","git_branch":"feature/ENG-123-add-login","message":{"role":"user","content":"anything"}}`,
	)

	ft := &fakeTracker{issuesByID: map[string]tracker.Issue{
		"ENG-123": {ID: "i1", Identifier: "ENG-123", Title: "Add login"},
	}}
	m, err := matcher.New(ft, nil, matcher.DefaultConfig())
	require.NoError(t, err)

	proc := New(ft, m, nil, testCaches())
	rec := queue.NewSessionStopRecord("s1", path, "/p")

	diag, err := proc.HandleSessionStop(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, diag)

	require.Len(t, ft.comments, 1)
	assert.Contains(t, ft.comments[0], "Claude Code Session Summary")
	assert.Empty(t, ft.created, "branch hit should not create a new issue")
	require.Len(t, ft.assigned, 1)
	assert.Equal(t, "u1", ft.assigned[0])
	require.Len(t, ft.states, 1)
	assert.Equal(t, "s-progress", ft.states[0])
}

func TestHandleSessionStopEmptyFilteredTranscriptMarksProcessed(t *testing.T) {
	path := writeTestTranscript(t,
		`{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:00Z","cwd":"/p","message":{"role":"user","content":"<system-reminder>noise</system-reminder>"}}`,
	)

	ft := &fakeTracker{}
	m, err := matcher.New(ft, nil, matcher.DefaultConfig())
	require.NoError(t, err)
	proc := New(ft, m, nil, testCaches())
	rec := queue.NewSessionStopRecord("s1", path, "/p")

	diag, err := proc.HandleSessionStop(context.Background(), rec)
	require.NoError(t, err)
	assert.NotEmpty(t, diag)
	assert.Empty(t, ft.comments)
}

func TestHandleSessionStopCreatesIssueAndDerivesLabels(t *testing.T) {
	path := writeTestTranscript(t,
		`{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:00Z","cwd":"/home/u/mobile-app","message":{"role":"user","content":"fix login crash on startup please investigate thoroughly"}}`,
		`{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:01Z","cwd":"/home/u/mobile-app","message":{"role":"user","content":"also check the logs"}}`,
	)

	ft := &fakeTracker{} // no search results -> no match -> create
	cfg := matcher.DefaultConfig()
	cfg.ConfidenceThreshold = 0.99
	m, err := matcher.New(ft, nil, cfg)
	require.NoError(t, err)
	proc := New(ft, m, nil, testCaches())
	rec := queue.NewSessionStopRecord("s1", path, "/home/u/mobile-app")

	diag, err := proc.HandleSessionStop(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, diag)

	require.Len(t, ft.created, 1)
	params := ft.created[0]
	assert.Contains(t, params.Title, "[mobile-app]")
	assert.Equal(t, "team1", params.TeamID)
	assert.ElementsMatch(t, []string{"l-bug", "l-mobile"}, params.LabelIDs)

	require.Len(t, ft.comments, 1)
}

func TestHandlePRCreatedAttachesLinkAndSetsReviewState(t *testing.T) {
	ft := &fakeTracker{}
	m, err := matcher.New(ft, nil, matcher.DefaultConfig())
	require.NoError(t, err)
	proc := New(ft, m, nil, testCaches())

	rec := queue.NewPRCreatedRecord("s1", "https://github.com/acme/w/pull/7", "")

	err = proc.HandlePRCreated(context.Background(), rec)
	require.NoError(t, err)

	require.Len(t, ft.created, 1)
	assert.Equal(t, "PR created: 7", ft.created[0].Title)
	require.Len(t, ft.linksAttached, 1)
	assert.Equal(t, rec.PRURL, ft.linksAttached[0])
	require.Len(t, ft.states, 1)
	assert.Equal(t, "s-review", ft.states[0])
}
