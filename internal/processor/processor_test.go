package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/ccsync/internal/matcher"
	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/session"
	"github.com/steveyegge/ccsync/internal/tracker"
)

// fakeTracker is an in-memory tracker.IssueTracker test double, per
// distilled spec §9's "test doubles implement the same capability set in
// memory."
type fakeTracker struct {
	tracker.IssueTracker
	issuesByID   map[string]tracker.Issue
	commentErr   error
	commentCalls int
}

func (f *fakeTracker) GetIssue(_ context.Context, id string) (*tracker.Issue, error) {
	issue, ok := f.issuesByID[id]
	if !ok {
		return nil, nil
	}
	return &issue, nil
}

func (f *fakeTracker) Search(_ context.Context, _ tracker.SearchOptions) ([]tracker.Issue, error) {
	return nil, nil
}

func (f *fakeTracker) AddComment(_ context.Context, _ string, _ string) error {
	f.commentCalls++
	return f.commentErr
}

func (f *fakeTracker) Assign(_ context.Context, _, _ string) error             { return nil }
func (f *fakeTracker) UpdateState(_ context.Context, _, _ string) error        { return nil }
func (f *fakeTracker) SetLabels(_ context.Context, _ string, _ []string) error { return nil }
func (f *fakeTracker) AttachLink(_ context.Context, _, _, _ string) error      { return nil }

func writeQueueTranscript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "transcript.jsonl")
	line := `{"type":"user","session_id":"s1","timestamp":"2025-01-01T00:00:00Z","cwd":"/p","git_branch":"feature/ENG-1-fix","message":{"role":"user","content":"fix the thing"}}`
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))
	return path
}

func newTestDispatcher(t *testing.T, ft *fakeTracker) *Dispatcher {
	t.Helper()
	m, err := matcher.New(ft, nil, matcher.DefaultConfig())
	require.NoError(t, err)
	caches := &session.Caches{
		Viewer: &tracker.User{ID: "u1"},
		Team:   &tracker.Team{ID: "team1"},
	}
	proc := session.New(ft, m, nil, caches)
	return NewDispatcher(proc)
}

func TestDispatchUnknownKindFails(t *testing.T) {
	ft := &fakeTracker{issuesByID: map[string]tracker.Issue{}}
	d := newTestDispatcher(t, ft)
	rec := &queue.Record{Kind: "made_up"}
	err := d.Dispatch(context.Background(), rec)
	assert.Error(t, err)
}

func TestDispatchSessionStopRoutesToSessionProcessor(t *testing.T) {
	dir := t.TempDir()
	path := writeQueueTranscript(t, dir)
	ft := &fakeTracker{issuesByID: map[string]tracker.Issue{
		"ENG-1": {ID: "i1", Identifier: "ENG-1"},
	}}
	d := newTestDispatcher(t, ft)
	rec := queue.NewSessionStopRecord("s1", path, "/p")

	err := d.Dispatch(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 1, ft.commentCalls)
}

func TestDrainIsNonReentrant(t *testing.T) {
	dir := t.TempDir()
	q := queue.New(filepath.Join(dir, "queue.jsonl"))
	ft := &fakeTracker{issuesByID: map[string]tracker.Issue{}}
	d := newTestDispatcher(t, ft)
	drainer := NewDrainer(q, d, 0)

	drainer.inFlight.Store(true)
	ran := drainer.Drain(context.Background())
	assert.False(t, ran, "a second drain must skip while one is in flight")
	drainer.inFlight.Store(false)
}

func TestRetryExhaustionAfterThreeAttempts(t *testing.T) {
	dir := t.TempDir()
	path := writeQueueTranscript(t, dir)
	q := queue.New(filepath.Join(dir, "queue.jsonl"))
	ft := &fakeTracker{
		issuesByID: map[string]tracker.Issue{"ENG-1": {ID: "i1", Identifier: "ENG-1"}},
		commentErr: errors.New("tracker returned HTTP 500"),
	}
	d := newTestDispatcher(t, ft)
	drainer := NewDrainer(q, d, 3)

	require.NoError(t, q.Append(queue.NewSessionStopRecord("s1", path, "/p")))

	for i := 0; i < 3; i++ {
		ran := drainer.Drain(context.Background())
		require.True(t, ran)
	}

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, queue.StatusFailed, all[0].Status)
	assert.Equal(t, 3, all[0].RetryCount)

	// A fourth drain pass must not pick the record up again: retry_count
	// (3) is no longer < max_retries (3).
	drainer.Drain(context.Background())
	all, err = q.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 3, all[0].RetryCount, "exhausted record must not be retried further")
	assert.Equal(t, 3, ft.commentCalls)
}
