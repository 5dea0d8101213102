package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/ccsync/internal/tracker"
	"github.com/steveyegge/ccsync/internal/transcript"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeTitle collapses whitespace/newlines to single spaces, trims,
// and truncates to 60 characters with a trailing "..." when truncated.
func normalizeTitle(text string) string {
	collapsed := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	return truncateWithEllipsis(collapsed, 60)
}

func truncateWithEllipsis(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// buildTitle implements distilled spec §4.4 step 3's title rule.
func buildTitle(projectName, firstUserMessage string) string {
	normalized := normalizeTitle(firstUserMessage)
	if projectName == "" {
		return normalized
	}
	return fmt.Sprintf("[%s] %s", projectName, normalized)
}

// buildDescription implements distilled spec §4.4 step 3's description
// rule: fixed preamble, then up to the first three user messages
// truncated to 300 characters each.
func buildDescription(userMessages []string) string {
	var b strings.Builder
	b.WriteString("This issue was auto-created from a coding-assistant session.\n\n")
	b.WriteString("## User Requests\n")
	for i, msg := range userMessages {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", truncateWithEllipsis(msg, 300))
	}
	return b.String()
}

// buildNewIssueParams assembles the full create-issue request per
// distilled spec §4.4 step 3.
func buildNewIssueParams(content *transcript.Content, caches *Caches, labelIDs []string) (tracker.NewIssueParams, error) {
	if caches == nil || caches.Team == nil {
		return tracker.NewIssueParams{}, fmt.Errorf("session: no cached team available, cannot create issue")
	}

	params := tracker.NewIssueParams{
		Title:       buildTitle(content.ProjectName, content.PrimaryRequest),
		Description: buildDescription(content.UserMessages()),
		TeamID:      caches.Team.ID,
		LabelIDs:    labelIDs,
	}
	if caches.Viewer != nil {
		params.AssigneeID = caches.Viewer.ID
	}
	if state := caches.InProgressState(); state != nil {
		params.StateID = state.ID
	}
	return params, nil
}
