package matcher

import "github.com/steveyegge/ccsync/internal/tracker"

// MatchType identifies which signal(s) produced a Result.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchKeyword  MatchType = "keyword"
	MatchSemantic MatchType = "semantic"
	MatchHybrid   MatchType = "hybrid"
)

// Result is the distilled spec's Match Result: an issue plus the
// confidence and provenance of the match.
type Result struct {
	Issue           tracker.Issue
	Confidence      float64
	MatchType       MatchType
	KeywordScore    float64
	SemanticScore   *float64
	MatchedKeywords []string
	Reasoning       string
}

// Config holds the tunables named in distilled spec §4.6.
type Config struct {
	BranchPattern        string
	KeywordWeight        float64
	SemanticWeight       float64
	ConfidenceThreshold  float64
	MaxCandidates        int
	EnableSemantic       bool
	MaxAPICallsPerMinute int
}

// DefaultConfig matches the defaults named throughout distilled spec §4.6.
func DefaultConfig() Config {
	return Config{
		BranchPattern:        `([A-Z]+-\d+)`,
		KeywordWeight:        0.6,
		SemanticWeight:       0.4,
		ConfidenceThreshold:  0.7,
		MaxCandidates:        10,
		EnableSemantic:       true,
		MaxAPICallsPerMinute: 30,
	}
}
