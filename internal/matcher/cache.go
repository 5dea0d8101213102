package matcher

import "sync"

// resultCache memoizes Resolve's outcome per session_id for the life of
// the process, per distilled spec §4.6 step 8.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]*Result
	done    map[string]bool
}

func newResultCache() *resultCache {
	return &resultCache{
		entries: map[string]*Result{},
		done:    map[string]bool{},
	}
}

func (c *resultCache) get(sessionID string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.done[sessionID] {
		return nil, false
	}
	return c.entries[sessionID], true
}

func (c *resultCache) put(sessionID string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sessionID] = result
	c.done[sessionID] = true
}
