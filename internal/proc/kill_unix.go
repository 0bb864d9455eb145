//go:build !windows

package proc

import (
	"os/exec"
	"syscall"
)

// setProcGroup places the child in its own process group so the whole tree
// can be signalled at once.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killTree terminates pid and all of its descendants by signalling the
// process group. Falls back to signalling the process alone when the group
// signal fails (the child may have changed its own group).
func killTree(pid int) error {
	if err := syscall.Kill(-pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return syscall.Kill(pid, syscall.SIGKILL)
}
