package processor

import (
	"context"
	"fmt"

	"github.com/steveyegge/ccsync/internal/session"
	"github.com/steveyegge/ccsync/internal/tracker"
)

// WarmCaches implements the Queue Processor's startup lifecycle step
// (distilled spec §4.3): "prefetch caches — the configured default
// assignee user, the first team, that team's labels, that team's workflow
// states" — in that deterministic order, per §9.
func WarmCaches(ctx context.Context, t tracker.IssueTracker) (*session.Caches, error) {
	caches := &session.Caches{}

	viewer, err := t.GetViewer(ctx)
	if err != nil {
		return nil, fmt.Errorf("processor: get viewer: %w", err)
	}
	caches.Viewer = viewer

	teams, err := t.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("processor: list teams: %w", err)
	}
	if len(teams) == 0 {
		return caches, nil
	}
	team := teams[0]
	caches.Team = &team

	labels, err := t.ListLabels(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("processor: list labels: %w", err)
	}
	caches.Labels = labels

	states, err := t.ListStates(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("processor: list states: %w", err)
	}
	caches.States = states

	return caches, nil
}
