package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/ccsync/internal/transcript"
)

// minSemanticRelevance is the threshold below which an LLM-scored
// candidate is discarded per distilled spec §4.6 step 6.
const minSemanticRelevance = 0.3

// rankSemantically sends the LLM transport a structured prompt naming
// each candidate and returns a map from issue identifier to relevance
// score for those scoring at or above minSemanticRelevance. Any transport
// or parse failure — including semantic ranking being disabled, or having
// no candidates — degrades to an empty map, which callers treat as
// keyword-only scoring.
func (m *Matcher) rankSemantically(ctx context.Context, content *transcript.Content, candidates []scoredIssue) map[string]float64 {
	scores := map[string]float64{}
	if !m.Config.EnableSemantic || len(candidates) == 0 || m.LLM == nil {
		return scores
	}

	if err := m.limiter.acquire(ctx); err != nil {
		return scores
	}

	prompt := buildSemanticPrompt(content, candidates)
	resp, err := m.LLM.MatchIssues(ctx, prompt)
	if err != nil || resp == nil {
		return scores
	}

	for _, match := range resp.Matches {
		if match.RelevanceScore >= minSemanticRelevance {
			scores[match.IssueID] = match.RelevanceScore
		}
	}
	return scores
}

func buildSemanticPrompt(content *transcript.Content, candidates []scoredIssue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Primary request: %s\n", content.PrimaryRequest)
	fmt.Fprintf(&b, "Project: %s\n", content.ProjectName)
	fmt.Fprintf(&b, "Working directory: %s\n", content.CWD)

	if len(content.FilePaths) > 0 {
		b.WriteString("Files touched:\n")
		for fp := range content.FilePaths {
			fmt.Fprintf(&b, "- %s\n", fp)
		}
	}

	if len(content.Keywords) > 0 {
		b.WriteString("Keywords:")
		for kw := range content.Keywords {
			fmt.Fprintf(&b, " %s", kw)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nCandidate issues:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id=%s title=%q state=%s\n", c.issue.Identifier, c.issue.Title, c.issue.State.Name)
	}

	b.WriteString("\nScore each candidate's relevance to the session above from 0.0 to 1.0. ")
	b.WriteString(`Respond with JSON: {"matches":[{"issue_id":"...","relevance_score":0.0,"reasoning":"...","matched_aspects":["..."]}]}`)
	return b.String()
}
