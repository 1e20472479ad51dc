//go:build windows

package runtime

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the tool in a new process group so console
// interrupts aimed at us do not reach it directly.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// killProcessGroup kills the tool. Helpers that outlive it lose their
// hold on the output channels when Kill closes the read ends.
func killProcessGroup(proc *os.Process) error {
	return proc.Kill()
}
