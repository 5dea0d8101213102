package matcher

import (
	"sort"
	"strings"

	"github.com/steveyegge/ccsync/internal/tracker"
	"github.com/steveyegge/ccsync/internal/transcript"
)

// scoredIssue pairs a candidate issue with its keyword score, mirroring
// the resolver's scoredResource shape but keyed on a float score instead
// of an integer one.
type scoredIssue struct {
	issue tracker.Issue
	score float64
}

// keywordScore implements distilled-spec §4.6 step 4: for each content
// keyword present in title+description, +0.15 if it's in the title else
// +0.05; +0.20 if the project name appears; plus a primary-request token
// overlap bonus, capped at 1.0.
func keywordScore(issue tracker.Issue, content *transcript.Content) float64 {
	titleLower := strings.ToLower(issue.Title)
	bodyLower := strings.ToLower(issue.Title + " " + issue.Description)

	var score float64
	for kw := range content.Keywords {
		if !strings.Contains(bodyLower, kw) {
			continue
		}
		if strings.Contains(titleLower, kw) {
			score += 0.15
		} else {
			score += 0.05
		}
	}

	if content.ProjectName != "" && strings.Contains(bodyLower, strings.ToLower(content.ProjectName)) {
		score += 0.20
	}

	score += primaryRequestOverlapBonus(content.PrimaryRequest, bodyLower)

	return capScore(score)
}

// primaryRequestOverlapBonus computes 0.30 * (overlap / primary_tokens)
// where overlap counts primary-request tokens of length > 2 that also
// appear as a word in bodyLower.
func primaryRequestOverlapBonus(primaryRequest, bodyLower string) float64 {
	tokens := significantTokens(primaryRequest)
	if len(tokens) == 0 {
		return 0
	}
	bodyWords := wordSet(bodyLower)

	overlap := 0
	for _, tok := range tokens {
		if _, ok := bodyWords[tok]; ok {
			overlap++
		}
	}
	return 0.30 * float64(overlap) / float64(len(tokens))
}

func significantTokens(text string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]{}`")
		if len(tok) > 2 {
			out = append(out, tok)
		}
	}
	return out
}

func wordSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]{}`")
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

func capScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	if score < 0 {
		return 0
	}
	return score
}

// topByKeywordScore sorts candidates by keyword score descending and
// returns at most max of them.
func topByKeywordScore(candidates []scoredIssue, max int) []scoredIssue {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// stateBonus implements step 7's state-type/name heuristic: 1.0 for
// in-progress-ish states, 0.5 for backlog/todo-ish states, 0.0 for
// done/cancelled states, else 0.3.
func stateBonus(state tracker.WorkflowState) float64 {
	name := strings.ToLower(state.Name)
	switch {
	case strings.Contains(name, "progress") || strings.Contains(name, "started"):
		return 1.0
	case strings.Contains(name, "todo") || strings.Contains(name, "backlog") || strings.Contains(name, "unstarted"):
		return 0.5
	case strings.Contains(name, "done") || strings.Contains(name, "complete") || strings.Contains(name, "cancel"):
		return 0.0
	default:
		return 0.3
	}
}

// combineConfidence implements step 7's final-confidence formula.
func combineConfidence(keywordScore, semanticScore float64, hasSemanticScore bool, kwWeight, semWeight float64, state tracker.WorkflowState) (confidence float64, matchType MatchType) {
	adjusted := capScore(keywordScore + 0.1*stateBonus(state))

	if !hasSemanticScore {
		return adjusted, MatchKeyword
	}

	totalWeight := kwWeight + semWeight
	if totalWeight <= 0 {
		totalWeight = 1
	}
	confidence = adjusted*(kwWeight/totalWeight) + semanticScore*(semWeight/totalWeight)

	if keywordScore > 0.3 {
		matchType = MatchHybrid
	} else {
		matchType = MatchSemantic
	}
	return confidence, matchType
}
