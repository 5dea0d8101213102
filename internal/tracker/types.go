// Package tracker defines the plugin interface for external issue-tracker
// integrations and the generic issue/state types the rest of the daemon
// operates on.
package tracker

import "time"

// StateType categorizes a workflow state the way the tracker reports it.
type StateType string

const (
	StateStarted   StateType = "started"
	StateUnstarted StateType = "unstarted"
	StateCompleted StateType = "completed"
	StateCanceled  StateType = "canceled"
	StateBacklog   StateType = "backlog"
)

// WorkflowState is one named phase an issue can be in.
type WorkflowState struct {
	ID   string
	Name string
	Type StateType
}

// Label is a named tag that can be attached to an issue.
type Label struct {
	ID   string
	Name string
}

// User is a tracker account that can be assigned to an issue.
type User struct {
	ID    string
	Name  string
	Email string
}

// Team groups issues, labels, and workflow states in the tracker.
type Team struct {
	ID   string
	Name string
	Key  string
}

// Assignee is the minimal assignee shape embedded in an Issue.
type Assignee struct {
	ID   string
	Name string
}

// Issue mirrors a tracker entity in the shape the rest of the daemon needs.
type Issue struct {
	ID          string
	Identifier  string
	Title       string
	Description string
	URL         string
	State       WorkflowState
	Assignee    *Assignee
	Labels      []Label
	UpdatedAt   time.Time
}

// NewIssueParams describes the fields needed to create an issue.
type NewIssueParams struct {
	Title       string
	Description string
	TeamID      string
	AssigneeID  string
	LabelIDs    []string
	StateID     string
}

// SearchOptions narrows a free-text search or a recent-issues listing.
type SearchOptions struct {
	Query      string
	StateTypes []StateType
	Limit      int
}
