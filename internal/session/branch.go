package session

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// currentBranchTimeout bounds the git subprocess the PR-Created Handler
// shells out to when it needs a branch name that the record payload
// itself does not carry.
const currentBranchTimeout = 2 * time.Second

// currentBranch returns the checked-out branch name in cwd, or "" if git
// is unavailable or cwd is not a repository. Best-effort: distilled spec
// §4.5 treats a missing branch match as "no match," not an error.
func currentBranch(ctx context.Context, cwd string) string {
	if cwd == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, currentBranchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
