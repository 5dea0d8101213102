package transcript

import (
	"path/filepath"
	"strings"
	"time"
)

// TimeRange is the span of timestamps covered by the entries a Content was
// extracted from.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Content is the Extracted Session Content derived from a filtered
// transcript: everything downstream components (matcher, summarizer,
// label derivation) operate on instead of raw entries.
type Content struct {
	SessionID         string
	PrimaryRequest    string
	AdditionalContext []string
	Keywords          map[string]struct{}
	CWD               string
	ProjectName       string
	ToolPatterns      map[string]struct{}
	FilePaths         map[string]struct{}
	TimeRange         TimeRange
	EntryCount        int
}

// UserMessages returns the primary request followed by additional context,
// in conversation order. Several call sites (issue description, summary
// fallback) need exactly this slice.
func (c *Content) UserMessages() []string {
	if c.PrimaryRequest == "" {
		return c.AdditionalContext
	}
	return append([]string{c.PrimaryRequest}, c.AdditionalContext...)
}

// filePathKeys are the tool-input object keys that are recognized as
// carrying a file path.
var filePathKeys = []string{"file_path", "path", "filePath", "file"}

// stopWords is excluded from the keyword bag; a short, deliberately
// unexhaustive list of function words common in coding-session prompts.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"it": {}, "i": {}, "you": {}, "we": {}, "my": {}, "your": {}, "please": {},
	"can": {}, "do": {}, "does": {}, "will": {}, "so": {}, "as": {}, "by": {},
	"from": {}, "not": {}, "have": {}, "has": {}, "had": {}, "if": {}, "then": {},
}

// Extract builds Content from a filtered, ordered entry list. entries
// should already have FilterNoise applied.
func Extract(entries []*Entry) *Content {
	c := &Content{
		Keywords:     map[string]struct{}{},
		ToolPatterns: map[string]struct{}{},
		FilePaths:    map[string]struct{}{},
	}

	c.EntryCount = len(entries)

	var userTexts []string
	for _, e := range entries {
		if c.TimeRange.Start.IsZero() || e.Timestamp.Before(c.TimeRange.Start) {
			c.TimeRange.Start = e.Timestamp
		}
		if e.Timestamp.After(c.TimeRange.End) {
			c.TimeRange.End = e.Timestamp
		}
		if c.SessionID == "" {
			c.SessionID = e.SessionID
		}
		if c.CWD == "" && e.CWD != "" {
			c.CWD = e.CWD
		}

		switch e.Type {
		case EntryUser:
			text := e.Text()
			if strings.TrimSpace(text) == "" {
				continue
			}
			userTexts = append(userTexts, text)
		case EntryAssistant:
			for _, b := range e.Blocks() {
				if b.Type == BlockToolUse {
					c.ToolPatterns[strings.ToLower(b.Name)] = struct{}{}
					collectFilePaths(b.Input, c.FilePaths)
				}
			}
		}
	}

	if len(userTexts) > 0 {
		c.PrimaryRequest = userTexts[0]
		c.AdditionalContext = userTexts[1:]
	}

	c.ProjectName = projectName(c.CWD)

	for _, text := range userTexts {
		addKeywords(c.Keywords, text)
	}
	if c.ProjectName != "" {
		c.Keywords[strings.ToLower(c.ProjectName)] = struct{}{}
	}
	for fp := range c.FilePaths {
		base := filepath.Base(fp)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if name != "" {
			c.Keywords[strings.ToLower(name)] = struct{}{}
		}
	}

	return c
}

func projectName(cwd string) string {
	if cwd == "" {
		return ""
	}
	return filepath.Base(filepath.Clean(cwd))
}

func addKeywords(dst map[string]struct{}, text string) {
	for _, tok := range strings.Fields(text) {
		tok = strings.ToLower(strings.Trim(tok, ".,!?;:\"'()[]{}`"))
		if tok == "" {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		dst[tok] = struct{}{}
	}
}

func collectFilePaths(input map[string]any, dst map[string]struct{}) {
	for _, key := range filePathKeys {
		v, ok := input[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			dst[s] = struct{}{}
		}
	}
}
