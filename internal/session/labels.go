package session

import (
	"regexp"
	"strings"

	"github.com/steveyegge/ccsync/internal/tracker"
)

// labelRule is one row of distilled spec §4.4.1's fixed ordered table.
type labelRule struct {
	pattern *regexp.Regexp
	labels  []string
}

var labelRules = buildLabelRules([]struct {
	pattern string
	labels  []string
}{
	{`frontend|web|react|vue|next`, []string{"Frontend"}},
	{`backend|api|server|node`, []string{"Backend"}},
	{`mobile|ios|android|react-native`, []string{"Mobile"}},
	{`infra|devops|terraform|k8s|kubernetes`, []string{"Infrastructure"}},
	{`test|spec|e2e`, []string{"Testing"}},
	{`doc|readme|wiki`, []string{"Documentation"}},
	{`design|figma|ui|ux`, []string{"Design"}},
	{`bug|fix|hotfix`, []string{"Bug"}},
	{`feature|feat`, []string{"Feature"}},
	{`refactor|cleanup`, []string{"Refactor"}},
})

func buildLabelRules(rows []struct {
	pattern string
	labels  []string
}) []labelRule {
	rules := make([]labelRule, len(rows))
	for i, r := range rows {
		rules[i] = labelRule{pattern: regexp.MustCompile("(?i)" + r.pattern), labels: r.labels}
	}
	return rules
}

// DeriveLabelNames returns the union of label names whose rule matches
// either cwd or the concatenated user messages.
func DeriveLabelNames(cwd string, userMessages []string) []string {
	haystacks := []string{cwd, strings.Join(userMessages, " ")}

	seen := map[string]bool{}
	var names []string
	for _, rule := range labelRules {
		matched := false
		for _, h := range haystacks {
			if rule.pattern.MatchString(h) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, name := range rule.labels {
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ResolveLabelIDs maps label names to ids by case-insensitive name
// equality against the cached label set; unknown names are silently
// dropped.
func ResolveLabelIDs(names []string, cached []tracker.Label) []string {
	var ids []string
	for _, name := range names {
		for _, l := range cached {
			if strings.EqualFold(l.Name, name) {
				ids = append(ids, l.ID)
				break
			}
		}
	}
	return ids
}
