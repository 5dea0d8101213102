// Package session implements the Session Processor (handler for
// session_stop records) and the PR-Created Handler.
package session

import (
	"context"
	"fmt"

	"github.com/steveyegge/ccsync/internal/llm"
	"github.com/steveyegge/ccsync/internal/matcher"
	"github.com/steveyegge/ccsync/internal/queue"
	"github.com/steveyegge/ccsync/internal/tracker"
	"github.com/steveyegge/ccsync/internal/transcript"
)

// Processor turns session_stop and pr_created records into tracker
// mutations. Its fields are process-wide caches and collaborators, per
// distilled spec §9: "avoid ambient global state."
type Processor struct {
	Tracker tracker.IssueTracker
	Matcher *matcher.Matcher
	LLM     llm.Transport
	Caches  *Caches
}

// New builds a Processor over the given collaborators.
func New(t tracker.IssueTracker, m *matcher.Matcher, llmTransport llm.Transport, caches *Caches) *Processor {
	return &Processor{Tracker: t, Matcher: m, LLM: llmTransport, Caches: caches}
}

// HandleSessionStop implements distilled spec §4.4's six-step algorithm.
// A nil error and non-nil diagnostic text both mean "processed, nothing
// to do" — the caller (Queue Processor dispatch) treats both the same:
// mark the record processed.
func (p *Processor) HandleSessionStop(ctx context.Context, rec *queue.Record) (diagnostic string, err error) {
	// [SUPPLEMENT] bounded wait for a transcript that may not have been
	// flushed to disk yet.
	transcript.WaitForFlush(rec.TranscriptPath, rec.Timestamp)

	// Step 1: load & filter.
	entries, err := transcript.Load(rec.TranscriptPath)
	if err != nil {
		return "", fmt.Errorf("session: load transcript %s: %w", rec.TranscriptPath, err)
	}
	filtered := transcript.FilterNoise(entries)
	if len(filtered) == 0 {
		return "filtered transcript is empty, nothing to summarize", nil
	}

	// Step 2: extract.
	content := transcript.Extract(filtered)
	if content.CWD == "" {
		content.CWD = rec.CWD
	}
	if content.SessionID == "" {
		content.SessionID = rec.SessionID
	}

	var gitBranch string
	for _, e := range filtered {
		if e.GitBranch != "" {
			gitBranch = e.GitBranch
			break
		}
	}

	// Step 3: resolve or create.
	issue, err := p.resolveOrCreateIssue(ctx, content, gitBranch)
	if err != nil {
		return "", err
	}

	// Step 4: enforce assignee/state/labels.
	if err := p.enforceIssueSetup(ctx, issue, content); err != nil {
		return "", err
	}

	// Step 5: summarize.
	summary := p.summarize(ctx, content.UserMessages())

	// Step 6: post comment.
	comment := formatSessionComment(summary, content.UserMessages())
	if err := p.Tracker.AddComment(ctx, issue.ID, comment); err != nil {
		return "", fmt.Errorf("session: post comment to %s: %w", issue.Identifier, err)
	}

	return "", nil
}

// resolveOrCreateIssue implements step 3.
func (p *Processor) resolveOrCreateIssue(ctx context.Context, content *transcript.Content, gitBranch string) (*tracker.Issue, error) {
	result, err := p.Matcher.Resolve(ctx, content, gitBranch)
	if err != nil {
		return nil, fmt.Errorf("session: resolve issue: %w", err)
	}
	if result != nil {
		return &result.Issue, nil
	}

	labelNames := DeriveLabelNames(content.CWD, content.UserMessages())
	labelIDs := ResolveLabelIDs(labelNames, p.Caches.Labels)

	params, err := buildNewIssueParams(content, p.Caches, labelIDs)
	if err != nil {
		return nil, fmt.Errorf("session: create issue: %w", err)
	}
	issue, err := p.Tracker.CreateIssue(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("session: create issue: %w", err)
	}
	return issue, nil
}

// enforceIssueSetup implements step 4: unconditional assignee overwrite,
// state set to in-progress/started if known, labels unioned (never
// removed).
func (p *Processor) enforceIssueSetup(ctx context.Context, issue *tracker.Issue, content *transcript.Content) error {
	if p.Caches.Viewer != nil {
		if err := p.Tracker.Assign(ctx, issue.ID, p.Caches.Viewer.ID); err != nil {
			return fmt.Errorf("session: assign issue %s: %w", issue.Identifier, err)
		}
	}

	if state := p.Caches.InProgressState(); state != nil {
		if err := p.Tracker.UpdateState(ctx, issue.ID, state.ID); err != nil {
			return fmt.Errorf("session: update state on %s: %w", issue.Identifier, err)
		}
	}

	labelNames := DeriveLabelNames(content.CWD, content.UserMessages())
	derivedIDs := ResolveLabelIDs(labelNames, p.Caches.Labels)
	if len(derivedIDs) > 0 {
		union := unionLabelIDs(issue.Labels, derivedIDs)
		if err := p.Tracker.SetLabels(ctx, issue.ID, union); err != nil {
			return fmt.Errorf("session: set labels on %s: %w", issue.Identifier, err)
		}
	}
	return nil
}

func unionLabelIDs(existing []tracker.Label, add []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range existing {
		if !seen[l.ID] {
			seen[l.ID] = true
			out = append(out, l.ID)
		}
	}
	for _, id := range add {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// summarize implements step 5: delegate to the LLM with up to the first
// 10 user messages, falling back to a deterministic join of the first
// five when the transport fails or there are too few messages to bother.
func (p *Processor) summarize(ctx context.Context, userMessages []string) string {
	if len(userMessages) > 2 && p.LLM != nil {
		prompt := buildSummaryPrompt(userMessages)
		text, err := p.LLM.Complete(ctx, prompt)
		if err == nil && text != "" {
			return text
		}
	}
	return fallbackSummary(userMessages)
}

func buildSummaryPrompt(userMessages []string) string {
	limit := len(userMessages)
	if limit > 10 {
		limit = 10
	}
	prompt := "Summarize what this coding session accomplished, in a few sentences, based on these user requests:\n\n"
	for i := 0; i < limit; i++ {
		prompt += fmt.Sprintf("%d. %s\n", i+1, userMessages[i])
	}
	return prompt
}

func fallbackSummary(userMessages []string) string {
	limit := len(userMessages)
	if limit > 5 {
		limit = 5
	}
	summary := ""
	for i := 0; i < limit; i++ {
		if i > 0 {
			summary += "\n"
		}
		summary += userMessages[i]
	}
	return summary
}

// formatSessionComment implements step 6's stable Markdown layout.
func formatSessionComment(summary string, userMessages []string) string {
	body := fmt.Sprintf("## Claude Code Session Summary\n\n%s\n\n---\n\n### User Requests\n", summary)
	limit := len(userMessages)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		body += fmt.Sprintf("- %s\n", truncateWithEllipsis(userMessages[i], 200))
	}
	return body
}
