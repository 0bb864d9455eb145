//go:build windows

package proc

import (
	"os/exec"
	"strconv"
)

// setProcGroup is a no-op on Windows; taskkill handles the tree.
func setProcGroup(cmd *exec.Cmd) {}

// killTree terminates pid and all of its descendants via taskkill.
func killTree(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}
