package tracker

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by a tracker adapter that has not had Init
// called, or whose Init failed silently.
var ErrNotInitialized = errors.New("tracker: not initialized")

// IssueTracker is the capability set any external issue-tracker integration
// must provide. This is the one-directional subset the core daemon needs:
// resolve issues, mutate them, and read the metadata required to do so. It
// deliberately excludes bidirectional-sync machinery (pull/push, conflict
// resolution, field mapping) since the daemon never reconciles changes back
// into a local store.
type IssueTracker interface {
	// Name is the lowercase identifier for this tracker (e.g. "linear").
	Name() string

	// Init authenticates and prepares the tracker for use.
	Init(ctx context.Context, cfg *Config) error

	// GetIssue fetches a single issue by its human-readable identifier.
	// Returns nil, nil if no such issue exists.
	GetIssue(ctx context.Context, identifier string) (*Issue, error)

	// Search performs a free-text query against the tracker, or, when
	// opts.Query is empty, lists recent active issues filtered by
	// opts.StateTypes and ordered by last update.
	Search(ctx context.Context, opts SearchOptions) ([]Issue, error)

	// CreateIssue creates a new issue and returns it as stored.
	CreateIssue(ctx context.Context, params NewIssueParams) (*Issue, error)

	// AddComment posts a Markdown comment to an issue.
	AddComment(ctx context.Context, issueID, body string) error

	// AttachLink adds a named URL attachment to an issue.
	AttachLink(ctx context.Context, issueID, url, title string) error

	// UpdateState transitions an issue to the given workflow state.
	UpdateState(ctx context.Context, issueID, stateID string) error

	// Assign sets an issue's assignee, unconditionally overwriting any
	// existing assignee.
	Assign(ctx context.Context, issueID, userID string) error

	// SetLabels overwrites an issue's label set.
	SetLabels(ctx context.Context, issueID string, labelIDs []string) error

	// ListTeams returns the teams visible to the authenticated credential.
	ListTeams(ctx context.Context) ([]Team, error)

	// ListLabels returns the labels available to a team.
	ListLabels(ctx context.Context, teamID string) ([]Label, error)

	// ListStates returns the workflow states available to a team.
	ListStates(ctx context.Context, teamID string) ([]WorkflowState, error)

	// FindUser looks up a user by name or email. Returns nil, nil if unknown.
	FindUser(ctx context.Context, nameOrEmail string) (*User, error)

	// GetViewer returns the identity the credential authenticates as.
	GetViewer(ctx context.Context) (*User, error)
}
