//go:build unix

package runtime

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup makes the tool the leader of a new process group so
// helpers it spawns are killed with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup kills the tool's whole process group, falling back to
// the tool alone if the group is gone.
func killProcessGroup(proc *os.Process) error {
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return proc.Kill()
}
