// Package queue implements the durable, append-only newline-delimited JSON
// work queue that decouples the event hooks (producer) from the Queue
// Processor (consumer).
package queue

import "time"

// Kind identifies the shape of a record's payload.
type Kind string

const (
	KindSessionStop Kind = "session_stop"
	KindPRCreated   Kind = "pr_created"
)

// Status is a record's position in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// DefaultMaxRetries bounds how many times a failed record is retried before
// it is considered exhausted.
const DefaultMaxRetries = 3

// Record is one line of the queue file. Kind-specific payload fields are
// all present on the struct (rather than a nested union) so the type
// round-trips through encoding/json without custom marshaling.
type Record struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	Timestamp  time.Time  `json:"timestamp"`
	Status     Status     `json:"status"`
	RetryCount int        `json:"retry_count"`
	Error      string     `json:"error,omitempty"`

	// session_stop payload
	SessionID      string `json:"session_id,omitempty"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	CWD            string `json:"cwd,omitempty"`

	// pr_created payload (SessionID and CWD above are shared with pr_created)
	PRURL string `json:"pr_url,omitempty"`
}

// NewSessionStopRecord builds an unsaved session_stop record; append()
// assigns its id, timestamp, and initial status.
func NewSessionStopRecord(sessionID, transcriptPath, cwd string) *Record {
	return &Record{
		Kind:           KindSessionStop,
		SessionID:      sessionID,
		TranscriptPath: transcriptPath,
		CWD:            cwd,
	}
}

// NewPRCreatedRecord builds an unsaved pr_created record.
func NewPRCreatedRecord(sessionID, prURL, cwd string) *Record {
	return &Record{
		Kind:      KindPRCreated,
		SessionID: sessionID,
		PRURL:     prURL,
		CWD:       cwd,
	}
}
