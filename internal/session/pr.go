package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/tracker"
)

// HandlePRCreated implements distilled spec §4.5: resolve an issue by
// branch only (no transcript content is available here), creating a
// minimal placeholder if none is found, then attach the PR link and
// advance to the "in review" state.
func (p *Processor) HandlePRCreated(ctx context.Context, rec *queue.Record) error {
	branch := currentBranch(ctx, rec.CWD)
	result, err := p.Matcher.Resolve(ctx, nil, branch)
	if err != nil {
		return fmt.Errorf("session: resolve issue for PR: %w", err)
	}

	var issue *tracker.Issue
	if result != nil {
		issue = &result.Issue
	} else if p.Caches.Team != nil {
		issue, err = p.Tracker.CreateIssue(ctx, tracker.NewIssueParams{
			Title:       fmt.Sprintf("PR created: %s", lastURLSegment(rec.PRURL)),
			Description: rec.PRURL,
			TeamID:      p.Caches.Team.ID,
		})
		if err != nil {
			return fmt.Errorf("session: create placeholder issue for PR: %w", err)
		}
	}

	if issue == nil {
		return nil
	}

	if err := p.Tracker.AttachLink(ctx, issue.ID, rec.PRURL, "Pull Request"); err != nil {
		return fmt.Errorf("session: attach PR link to %s: %w", issue.Identifier, err)
	}

	if state := p.Caches.InReviewState(); state != nil {
		if err := p.Tracker.UpdateState(ctx, issue.ID, state.ID); err != nil {
			return fmt.Errorf("session: update state on %s: %w", issue.Identifier, err)
		}
	}
	return nil
}

func lastURLSegment(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	return parts[len(parts)-1]
}
