package transcript

import "strings"

// noiseMarkers are substrings that, when present in an entry's textual
// content, mark it as host-injected noise rather than real conversation
// content.
var noiseMarkers = []string{
	"<system-reminder>",
	"<local-command>",
	"<user-prompt-submit-hook>",
}

// FilterNoise keeps the entries whose textual content does not contain a
// noise marker and whose associated path (if any, via cwd) does not carry
// a subagents/ segment. It does not filter by entry type; Load already
// drops everything but user and assistant entries. Applying it twice is a
// no-op: it
// only ever removes entries, never transforms survivors.
func FilterNoise(entries []*Entry) []*Entry {
	var out []*Entry
	for _, e := range entries {
		if containsSubagentsSegment(e.CWD) {
			continue
		}
		if e.Type == EntryUser && containsNoiseMarker(e.Text()) {
			continue
		}
		if e.Type == EntryAssistant && assistantTextHasNoise(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsNoiseMarker(text string) bool {
	for _, m := range noiseMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func assistantTextHasNoise(e *Entry) bool {
	for _, b := range e.Blocks() {
		if b.Type == BlockText && containsNoiseMarker(b.Text) {
			return true
		}
	}
	return false
}

func containsSubagentsSegment(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "subagents" {
			return true
		}
	}
	return false
}
