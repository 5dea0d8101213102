package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// acquireLock implements DESIGN.md's resolution of the distilled spec's
// left-open "two daemons on the same queue file" question: an advisory
// lock file created with O_EXCL, holding the owning PID. If the file
// already exists and that PID is still alive, acquisition fails; if the
// PID is dead, the stale lock is replaced.
func acquireLock(path string) (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ccsyncd: create lock dir for %s: %w", path, err)
	}

	if existing, err := os.ReadFile(path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(existing))); perr == nil {
			if isProcessRunning(pid) {
				return nil, fmt.Errorf("ccsyncd: already running (pid %d, lock %s)", pid, path)
			}
		}
		_ = os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ccsyncd: acquire lock %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return nil, fmt.Errorf("ccsyncd: write lock %s: %w", path, err)
	}

	return func() { _ = os.Remove(path) }, nil
}
