package linear

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/ccsync/internal/tracker"
)

func init() {
	tracker.Register("linear", func() tracker.IssueTracker {
		return &Adapter{}
	})
}

// Adapter implements tracker.IssueTracker against Linear's GraphQL API.
type Adapter struct {
	client *Client
	teamID string
}

// Name returns the tracker identifier.
func (a *Adapter) Name() string { return "linear" }

// Init authenticates and records the team this daemon operates against.
func (a *Adapter) Init(ctx context.Context, cfg *tracker.Config) error {
	token, err := cfg.GetRequired("token")
	if err != nil {
		return err
	}
	teamID := cfg.Get("team_id")

	client := NewClient(token, teamID)
	if endpoint := cfg.Get("endpoint"); endpoint != "" {
		client = client.WithEndpoint(endpoint)
	}
	a.client = client
	a.teamID = teamID
	return nil
}

func (a *Adapter) ensureInit() error {
	if a.client == nil {
		return tracker.ErrNotInitialized
	}
	return nil
}

type issueNode struct {
	ID          string      `json:"id"`
	Identifier  string      `json:"identifier"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	State       stateNode   `json:"state"`
	Assignee    *userNode   `json:"assignee"`
	Labels      labelConn   `json:"labels"`
}

type stateNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type userNode struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type labelConn struct {
	Nodes []labelNode `json:"nodes"`
}

type labelNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const issueFieldsFragment = `
  id identifier title description url updatedAt
  state { id name type }
  assignee { id name email }
  labels { nodes { id name } }
`

func toIssue(n issueNode) tracker.Issue {
	issue := tracker.Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		URL:         n.URL,
		UpdatedAt:   n.UpdatedAt,
		State: tracker.WorkflowState{
			ID:   n.State.ID,
			Name: n.State.Name,
			Type: tracker.StateType(n.State.Type),
		},
	}
	if n.Assignee != nil {
		issue.Assignee = &tracker.Assignee{ID: n.Assignee.ID, Name: n.Assignee.Name}
	}
	for _, l := range n.Labels.Nodes {
		issue.Labels = append(issue.Labels, tracker.Label{ID: l.ID, Name: l.Name})
	}
	return issue
}

// GetIssue fetches a single issue by identifier.
func (a *Adapter) GetIssue(ctx context.Context, identifier string) (*tracker.Issue, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Issue *issueNode `json:"issue"`
	}
	query := fmt.Sprintf(`query($id: String!) { issue(id: $id) { %s } }`, issueFieldsFragment)
	if err := a.client.do(ctx, query, map[string]any{"id": identifier}, &resp); err != nil {
		return nil, err
	}
	if resp.Issue == nil {
		return nil, nil
	}
	issue := toIssue(*resp.Issue)
	return &issue, nil
}

// Search performs a free-text query, or lists recent active issues when
// opts.Query is empty.
func (a *Adapter) Search(ctx context.Context, opts tracker.SearchOptions) ([]tracker.Issue, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	var resp struct {
		IssueSearch struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issueSearch"`
	}

	if opts.Query != "" {
		query := fmt.Sprintf(`query($q: String!, $first: Int!) {
			issueSearch(query: $q, first: $first) { nodes { %s } }
		}`, issueFieldsFragment)
		if err := a.client.do(ctx, query, map[string]any{"q": opts.Query, "first": limit}, &resp); err != nil {
			return nil, err
		}
	} else {
		types := make([]string, 0, len(opts.StateTypes))
		for _, t := range opts.StateTypes {
			types = append(types, string(t))
		}
		query := fmt.Sprintf(`query($team: ID!, $types: [String!], $first: Int!) {
			issueSearch(filter: { team: { id: { eq: $team } }, state: { type: { in: $types } } },
				orderBy: updatedAt, first: $first) { nodes { %s } }
		}`, issueFieldsFragment)
		if err := a.client.do(ctx, query, map[string]any{"team": a.teamID, "types": types, "first": limit}, &resp); err != nil {
			return nil, err
		}
	}

	issues := make([]tracker.Issue, 0, len(resp.IssueSearch.Nodes))
	for _, n := range resp.IssueSearch.Nodes {
		issues = append(issues, toIssue(n))
	}
	return issues, nil
}

// CreateIssue creates a new issue.
func (a *Adapter) CreateIssue(ctx context.Context, params tracker.NewIssueParams) (*tracker.Issue, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	teamID := params.TeamID
	if teamID == "" {
		teamID = a.teamID
	}
	var resp struct {
		IssueCreate struct {
			Success bool      `json:"success"`
			Issue   issueNode `json:"issue"`
		} `json:"issueCreate"`
	}
	query := fmt.Sprintf(`mutation($input: IssueCreateInput!) {
		issueCreate(input: $input) { success issue { %s } }
	}`, issueFieldsFragment)
	input := map[string]any{
		"teamId":      teamID,
		"title":       params.Title,
		"description": params.Description,
	}
	if params.AssigneeID != "" {
		input["assigneeId"] = params.AssigneeID
	}
	if params.StateID != "" {
		input["stateId"] = params.StateID
	}
	if len(params.LabelIDs) > 0 {
		input["labelIds"] = params.LabelIDs
	}
	if err := a.client.do(ctx, query, map[string]any{"input": input}, &resp); err != nil {
		return nil, err
	}
	if !resp.IssueCreate.Success {
		return nil, fmt.Errorf("linear: issue create reported failure")
	}
	issue := toIssue(resp.IssueCreate.Issue)
	return &issue, nil
}

// AddComment posts a Markdown comment to an issue.
func (a *Adapter) AddComment(ctx context.Context, issueID, body string) error {
	if err := a.ensureInit(); err != nil {
		return err
	}
	var resp struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	query := `mutation($input: CommentCreateInput!) { commentCreate(input: $input) { success } }`
	input := map[string]any{"issueId": issueID, "body": body}
	if err := a.client.do(ctx, query, map[string]any{"input": input}, &resp); err != nil {
		return err
	}
	if !resp.CommentCreate.Success {
		return fmt.Errorf("linear: comment create reported failure")
	}
	return nil
}

// AttachLink attaches a named URL to an issue.
func (a *Adapter) AttachLink(ctx context.Context, issueID, url, title string) error {
	if err := a.ensureInit(); err != nil {
		return err
	}
	var resp struct {
		AttachmentCreate struct {
			Success bool `json:"success"`
		} `json:"attachmentCreate"`
	}
	query := `mutation($input: AttachmentCreateInput!) { attachmentCreate(input: $input) { success } }`
	input := map[string]any{"issueId": issueID, "url": url, "title": title}
	if err := a.client.do(ctx, query, map[string]any{"input": input}, &resp); err != nil {
		return err
	}
	if !resp.AttachmentCreate.Success {
		return fmt.Errorf("linear: attachment create reported failure")
	}
	return nil
}

// UpdateState transitions an issue to the given workflow state.
func (a *Adapter) UpdateState(ctx context.Context, issueID, stateID string) error {
	return a.updateIssue(ctx, issueID, map[string]any{"stateId": stateID})
}

// Assign sets an issue's assignee.
func (a *Adapter) Assign(ctx context.Context, issueID, userID string) error {
	return a.updateIssue(ctx, issueID, map[string]any{"assigneeId": userID})
}

// SetLabels overwrites an issue's label set.
func (a *Adapter) SetLabels(ctx context.Context, issueID string, labelIDs []string) error {
	return a.updateIssue(ctx, issueID, map[string]any{"labelIds": labelIDs})
}

func (a *Adapter) updateIssue(ctx context.Context, issueID string, input map[string]any) error {
	if err := a.ensureInit(); err != nil {
		return err
	}
	var resp struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	query := `mutation($id: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $id, input: $input) { success }
	}`
	if err := a.client.do(ctx, query, map[string]any{"id": issueID, "input": input}, &resp); err != nil {
		return err
	}
	if !resp.IssueUpdate.Success {
		return fmt.Errorf("linear: issue update reported failure")
	}
	return nil
}

// ListTeams returns the teams visible to the authenticated token.
func (a *Adapter) ListTeams(ctx context.Context) ([]tracker.Team, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Teams struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
				Key  string `json:"key"`
			} `json:"nodes"`
		} `json:"teams"`
	}
	query := `query { teams { nodes { id name key } } }`
	if err := a.client.do(ctx, query, nil, &resp); err != nil {
		return nil, err
	}
	teams := make([]tracker.Team, 0, len(resp.Teams.Nodes))
	for _, n := range resp.Teams.Nodes {
		teams = append(teams, tracker.Team{ID: n.ID, Name: n.Name, Key: n.Key})
	}
	return teams, nil
}

// ListLabels returns the labels available to a team.
func (a *Adapter) ListLabels(ctx context.Context, teamID string) ([]tracker.Label, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Team struct {
			Labels labelConn `json:"labels"`
		} `json:"team"`
	}
	query := `query($id: String!) { team(id: $id) { labels { nodes { id name } } } }`
	if err := a.client.do(ctx, query, map[string]any{"id": teamID}, &resp); err != nil {
		return nil, err
	}
	labels := make([]tracker.Label, 0, len(resp.Team.Labels.Nodes))
	for _, n := range resp.Team.Labels.Nodes {
		labels = append(labels, tracker.Label{ID: n.ID, Name: n.Name})
	}
	return labels, nil
}

// ListStates returns the workflow states available to a team.
func (a *Adapter) ListStates(ctx context.Context, teamID string) ([]tracker.WorkflowState, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Team struct {
			States struct {
				Nodes []stateNode `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	query := `query($id: String!) { team(id: $id) { states { nodes { id name type } } } }`
	if err := a.client.do(ctx, query, map[string]any{"id": teamID}, &resp); err != nil {
		return nil, err
	}
	states := make([]tracker.WorkflowState, 0, len(resp.Team.States.Nodes))
	for _, n := range resp.Team.States.Nodes {
		states = append(states, tracker.WorkflowState{ID: n.ID, Name: n.Name, Type: tracker.StateType(n.Type)})
	}
	return states, nil
}

// FindUser looks up a user by name or email.
func (a *Adapter) FindUser(ctx context.Context, nameOrEmail string) (*tracker.User, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Users struct {
			Nodes []userNode `json:"nodes"`
		} `json:"users"`
	}
	query := `query($filter: UserFilter!) { users(filter: $filter) { nodes { id name email } } }`
	filter := map[string]any{
		"or": []map[string]any{
			{"email": map[string]any{"eq": nameOrEmail}},
			{"name": map[string]any{"eq": nameOrEmail}},
		},
	}
	if err := a.client.do(ctx, query, map[string]any{"filter": filter}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users.Nodes) == 0 {
		return nil, nil
	}
	n := resp.Users.Nodes[0]
	return &tracker.User{ID: n.ID, Name: n.Name, Email: n.Email}, nil
}

// GetViewer returns the identity the token authenticates as.
func (a *Adapter) GetViewer(ctx context.Context) (*tracker.User, error) {
	if err := a.ensureInit(); err != nil {
		return nil, err
	}
	var resp struct {
		Viewer userNode `json:"viewer"`
	}
	query := `query { viewer { id name email } }`
	if err := a.client.do(ctx, query, nil, &resp); err != nil {
		return nil, err
	}
	return &tracker.User{ID: resp.Viewer.ID, Name: resp.Viewer.Name, Email: resp.Viewer.Email}, nil
}
