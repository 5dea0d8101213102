//go:build unix

package main

import "syscall"

// isProcessRunning reports whether pid is alive. EPERM (no permission to
// signal it, common in sandboxed environments) still counts as running —
// the process exists, we just can't probe it harder than this.
func isProcessRunning(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil || err == syscall.EPERM {
		return true
	}
	return false
}
