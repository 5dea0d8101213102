// Package matcher implements the Hybrid Issue Matcher: branch-pattern
// extraction, keyword search, and LLM-scored semantic ranking combined
// under a confidence threshold.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/ccsync/internal/llm"
	"github.com/steveyegge/ccsync/internal/tracker"
	"github.com/steveyegge/ccsync/internal/transcript"
)

const minPrimaryRequestLen = 20
const minEntryCount = 2

// Matcher is the pure resolution engine: resolve(content, git_branch) ->
// identifier | null, per distilled spec §4.6.
type Matcher struct {
	Tracker tracker.IssueTracker
	LLM     llm.Transport
	Config  Config

	branchRe *regexp.Regexp
	limiter  *tokenBucket
	cache    *resultCache
}

// New builds a Matcher. t is required by every path that reaches the
// tracker. llmTransport may be nil, in which case semantic ranking is
// skipped and candidates are scored by keyword only.
func New(t tracker.IssueTracker, llmTransport llm.Transport, cfg Config) (*Matcher, error) {
	re, err := regexp.Compile(cfg.BranchPattern)
	if err != nil {
		return nil, fmt.Errorf("matcher: invalid branch pattern %q: %w", cfg.BranchPattern, err)
	}
	return &Matcher{
		Tracker:  t,
		LLM:      llmTransport,
		Config:   cfg,
		branchRe: re,
		limiter:  newTokenBucket(cfg.MaxAPICallsPerMinute),
		cache:    newResultCache(),
	}, nil
}

// Resolve implements the full 8-step algorithm. content may be nil when
// only branch resolution is needed (the PR-Created Handler's use case).
func (m *Matcher) Resolve(ctx context.Context, content *transcript.Content, gitBranch string) (*Result, error) {
	// Step 1: exact branch match, no further work regardless of content.
	if id := m.extractBranchIdentifier(gitBranch); id != "" {
		if err := m.limiter.acquire(ctx); err != nil {
			return nil, err
		}
		issue, err := m.Tracker.GetIssue(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("matcher: fetch branch-matched issue %s: %w", id, err)
		}
		if issue == nil {
			return nil, nil
		}
		return &Result{Issue: *issue, Confidence: 1.0, MatchType: MatchExact}, nil
	}

	if content == nil {
		return nil, nil
	}

	if cached, ok := m.cache.get(content.SessionID); ok {
		return cached, nil
	}

	result, err := m.resolveByContent(ctx, content)
	if err != nil {
		return nil, err
	}
	if content.SessionID != "" {
		m.cache.put(content.SessionID, result)
	}
	return result, nil
}

// extractBranchIdentifier returns the captured identifier, or "" if
// gitBranch does not match the configured pattern.
func (m *Matcher) extractBranchIdentifier(gitBranch string) string {
	if gitBranch == "" {
		return ""
	}
	match := m.branchRe.FindStringSubmatch(gitBranch)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func (m *Matcher) resolveByContent(ctx context.Context, content *transcript.Content) (*Result, error) {
	// Step 2: early reject.
	if len(content.PrimaryRequest) < minPrimaryRequestLen || content.EntryCount < minEntryCount {
		return nil, nil
	}

	candidates, err := m.searchCandidates(ctx, content)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Steps 4-5: score and take the top N by keyword score.
	scored := make([]scoredIssue, 0, len(candidates))
	for _, issue := range candidates {
		scored = append(scored, scoredIssue{issue: issue, score: keywordScore(issue, content)})
	}
	scored = topByKeywordScore(scored, m.Config.MaxCandidates)

	// Step 6: semantic ranking (best-effort; failures degrade to keyword-only).
	semanticScores := m.rankSemantically(ctx, content, scored)

	// Step 7: combine.
	var best *Result
	for _, c := range scored {
		semScore, hasSem := semanticScores[c.issue.Identifier]
		confidence, matchType := combineConfidence(c.score, semScore, hasSem, m.Config.KeywordWeight, m.Config.SemanticWeight, c.issue.State)

		var semPtr *float64
		if hasSem {
			v := semScore
			semPtr = &v
		}

		candidateResult := &Result{
			Issue:         c.issue,
			Confidence:    confidence,
			MatchType:     matchType,
			KeywordScore:  c.score,
			SemanticScore: semPtr,
		}
		if best == nil || candidateResult.Confidence > best.Confidence {
			best = candidateResult
		}
	}

	// Step 8: accept iff above threshold.
	if best == nil || best.Confidence < m.Config.ConfidenceThreshold {
		return nil, nil
	}
	return best, nil
}

// searchCandidates implements step 3: up to three concurrent search
// queries, merged and deduplicated by identifier, with a recent-active
// fallback when all three come back empty.
func (m *Matcher) searchCandidates(ctx context.Context, content *transcript.Content) ([]tracker.Issue, error) {
	queries := m.buildSearchQueries(content)

	results := make([][]tracker.Issue, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := m.limiter.acquire(gctx); err != nil {
				return err
			}
			issues, err := m.Tracker.Search(gctx, tracker.SearchOptions{Query: q, Limit: m.Config.MaxCandidates})
			if err != nil {
				// A failed query contributes no results; tracker errors
				// never fail the search as a whole, only a canceled
				// context (via the limiter) does.
				return nil
			}
			results[i] = issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matcher: keyword search: %w", err)
	}

	merged := mergeByIdentifier(results...)
	if len(merged) > 0 {
		return merged, nil
	}

	if err := m.limiter.acquire(ctx); err != nil {
		return nil, err
	}
	recent, err := m.Tracker.Search(ctx, tracker.SearchOptions{
		StateTypes: []tracker.StateType{tracker.StateStarted, tracker.StateUnstarted},
		Limit:      m.Config.MaxCandidates,
	})
	if err != nil {
		return nil, nil
	}
	return recent, nil
}

func (m *Matcher) buildSearchQueries(content *transcript.Content) []string {
	var queries []string

	compact := content.ProjectName
	kwCount := 0
	for kw := range content.Keywords {
		if kwCount >= 5 {
			break
		}
		compact += " " + kw
		kwCount++
	}
	if strings.TrimSpace(compact) != "" {
		queries = append(queries, strings.TrimSpace(compact))
	}

	if pr := truncate(content.PrimaryRequest, 100); pr != "" {
		queries = append(queries, pr)
	}

	if content.ProjectName != "" {
		queries = append(queries, content.ProjectName)
	}

	return queries
}

func mergeByIdentifier(groups ...[]tracker.Issue) []tracker.Issue {
	seen := map[string]bool{}
	var merged []tracker.Issue
	for _, group := range groups {
		for _, issue := range group {
			if seen[issue.Identifier] {
				continue
			}
			seen[issue.Identifier] = true
			merged = append(merged, issue)
		}
	}
	return merged
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
