//go:build windows

package llm

import "os/exec"

// setProcessGroup is a no-op on Windows; exec.Cmd.Process.Kill below is
// sufficient for the single-process case this transport targets there.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup kills just the immediate process on Windows.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
