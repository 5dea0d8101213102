package session

import (
	"strings"

	"github.com/steveyegge/ccsync/internal/tracker"
)

// Caches holds the tracker metadata the Queue Processor prefetches once at
// startup (distilled spec §4.3, §9: viewer -> team -> labels -> states, in
// that deterministic order) and that both handlers in this package treat
// as read-only for the life of the process.
type Caches struct {
	Viewer *tracker.User
	Team   *tracker.Team
	Labels []tracker.Label
	States []tracker.WorkflowState
}

// StateByNameContains returns the first cached state whose name contains
// needle (case-insensitive), or nil.
func (c *Caches) StateByNameContains(needle string) *tracker.WorkflowState {
	if c == nil {
		return nil
	}
	for i := range c.States {
		if strings.Contains(strings.ToLower(c.States[i].Name), strings.ToLower(needle)) {
			return &c.States[i]
		}
	}
	return nil
}

// InProgressState implements distilled spec §4.4 step 3's state_id rule:
// a state named "in progress" else one named "started".
func (c *Caches) InProgressState() *tracker.WorkflowState {
	if s := c.StateByNameContains("in progress"); s != nil {
		return s
	}
	return c.StateByNameContains("started")
}

// InReviewState implements distilled spec §4.5: a state named "in review"
// else one named "review".
func (c *Caches) InReviewState() *tracker.WorkflowState {
	if s := c.StateByNameContains("in review"); s != nil {
		return s
	}
	return c.StateByNameContains("review")
}
