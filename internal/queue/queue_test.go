package queue

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "queue.jsonl"))
}

func TestAppendAssignsIDAndPendingStatus(t *testing.T) {
	q := newTestQueue(t)
	rec := NewSessionStopRecord("s1", "/tmp/s1.jsonl", "/tmp/proj")

	require.NoError(t, q.Append(rec))
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPending, rec.Status)
	assert.False(t, rec.Timestamp.IsZero())

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, rec.ID, all[0].ID)
	assert.Equal(t, KindSessionStop, all[0].Kind)
}

func TestReadAllSkipsBlankAndInvalidLines(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(q.path), 0o755))
	content := "\n{\"id\":\"a\",\"kind\":\"session_stop\",\"status\":\"pending\"}\nnot json\n\n{\"id\":\"b\",\"kind\":\"pr_created\",\"status\":\"failed\"}\n"
	require.NoError(t, os.WriteFile(q.path, []byte(content), 0o644))

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestReadAllOnMissingFileReturnsEmpty(t *testing.T) {
	q := newTestQueue(t)
	all, err := q.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReadPendingFiltersByStatus(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(NewSessionStopRecord("s1", "/t/a.jsonl", "/t")))
	require.NoError(t, q.Append(NewPRCreatedRecord("s2", "https://github.com/a/b/pull/1", "/t")))

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, q.UpdateStatus(all[0].ID, StatusProcessed, ""))

	pending, err := q.ReadPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, all[1].ID, pending[0].ID)
}

func TestReadRetryableRespectsMaxRetries(t *testing.T) {
	q := newTestQueue(t)
	rec := NewSessionStopRecord("s1", "/t/a.jsonl", "/t")
	require.NoError(t, q.Append(rec))

	for i := 0; i < 3; i++ {
		require.NoError(t, q.UpdateStatus(rec.ID, StatusFailed, "boom"))
	}

	retryable, err := q.ReadRetryable(3)
	require.NoError(t, err)
	assert.Empty(t, retryable, "retry_count reached max_retries, no longer retryable")

	retryable, err = q.ReadRetryable(5)
	require.NoError(t, err)
	require.Len(t, retryable, 1)
	assert.Equal(t, 3, retryable[0].RetryCount)
	assert.Equal(t, "boom", retryable[0].Error)
}

func TestUpdateStatusFailedIncrementsRetryCount(t *testing.T) {
	q := newTestQueue(t)
	rec := NewSessionStopRecord("s1", "/t/a.jsonl", "/t")
	require.NoError(t, q.Append(rec))

	require.NoError(t, q.UpdateStatus(rec.ID, StatusFailed, "tracker 500"))

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, StatusFailed, all[0].Status)
	assert.Equal(t, 1, all[0].RetryCount)
	assert.Equal(t, "tracker 500", all[0].Error)
}

func TestUpdateStatusPendingLeavesRetryCountAndClearsError(t *testing.T) {
	q := newTestQueue(t)
	rec := NewSessionStopRecord("s1", "/t/a.jsonl", "/t")
	require.NoError(t, q.Append(rec))
	require.NoError(t, q.UpdateStatus(rec.ID, StatusFailed, "boom"))

	require.NoError(t, q.UpdateStatus(rec.ID, StatusPending, ""))

	all, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, StatusPending, all[0].Status)
	assert.Equal(t, 1, all[0].RetryCount, "explicit retry does not reset retry_count")
	assert.Empty(t, all[0].Error)
}

func TestUpdateStatusUnknownIDReturnsErrRecordNotFound(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.Append(NewSessionStopRecord("s1", "/t/a.jsonl", "/t")))

	err := q.UpdateStatus("does-not-exist", StatusProcessed, "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCleanupOldDropsOnlyOldProcessedRecords(t *testing.T) {
	q := newTestQueue(t)
	old := NewSessionStopRecord("s1", "/t/a.jsonl", "/t")
	recent := NewSessionStopRecord("s2", "/t/b.jsonl", "/t")
	require.NoError(t, q.Append(old))
	require.NoError(t, q.Append(recent))
	require.NoError(t, q.UpdateStatus(old.ID, StatusProcessed, ""))

	all, err := q.ReadAll()
	require.NoError(t, err)
	for _, r := range all {
		if r.ID == old.ID {
			r.Timestamp = r.Timestamp.Add(-48 * time.Hour)
		}
	}
	require.NoError(t, q.rewriteLocked(all))

	require.NoError(t, q.CleanupOld(24*time.Hour))

	remaining, err := q.ReadAll()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}
