package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// DefaultLaunchTimeout bounds how long Start waits for the tool to spawn.
const DefaultLaunchTimeout = 30 * time.Second

// ProcessConfig configures one lint tool invocation.
type ProcessConfig struct {
	// ToolPath is the executable, resolved through PATH if not absolute.
	ToolPath string
	// Args is the complete argument list.
	Args []string
	// WorkDir is the process working directory. Empty inherits ours.
	WorkDir string
	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string
	// LaunchTimeout bounds the spawn. Zero selects DefaultLaunchTimeout.
	LaunchTimeout time.Duration
}

// ProcessResult is the exit state of the tool.
type ProcessResult struct {
	// ExitCode is the process exit code, or -1 if it was killed by a signal.
	ExitCode int
}

// Process abstracts the tool process lifecycle for testing.
type Process interface {
	Start(ctx context.Context) error
	// Stdout carries the diagnostic stream.
	Stdout() io.Reader
	// Stderr carries the banner and progress markers.
	Stderr() io.Reader
	// Wait reaps the process. Must be called after both readers return.
	Wait() (*ProcessResult, error)
	// Kill terminates the process and closes both readers, so pending
	// reads return even if a helper process still holds the channels.
	Kill() error
}

// ProcessFactory creates a Process. Used for test injection.
type ProcessFactory func(config *ProcessConfig) Process

// LintProcess runs the tool with os/exec and two output pipes.
type LintProcess struct {
	config *ProcessConfig
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

// NewLintProcess creates an unstarted LintProcess.
func NewLintProcess(config *ProcessConfig) Process {
	return &LintProcess{config: config}
}

// Start spawns the tool. Any failure is a *LaunchError.
func (p *LintProcess) Start(ctx context.Context) error {
	path, err := exec.LookPath(p.config.ToolPath)
	if err != nil {
		return &LaunchError{Path: p.config.ToolPath, Err: err}
	}

	p.cmd = exec.Command(path, p.config.Args...)
	p.cmd.Dir = p.config.WorkDir
	setProcessGroup(p.cmd)
	if len(p.config.Env) > 0 {
		p.cmd.Env = deduplicateEnv(append(os.Environ(), p.config.Env...))
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return &LaunchError{Path: path, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	p.stdout = stdout

	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return &LaunchError{Path: path, Err: fmt.Errorf("stderr pipe: %w", err)}
	}
	p.stderr = stderr

	timeout := p.config.LaunchTimeout
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}

	started := make(chan error, 1)
	go func() { started <- p.cmd.Start() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-started:
		if err != nil {
			return &LaunchError{Path: path, Err: err}
		}
		return nil
	case <-timer.C:
		go p.reapLate(started)
		return &LaunchError{Path: path, Err: ErrLaunchTimeout}
	case <-ctx.Done():
		go p.reapLate(started)
		return &LaunchError{Path: path, Err: ctx.Err()}
	}
}

// reapLate kills a process whose spawn completed after Start gave up on it.
func (p *LintProcess) reapLate(started <-chan error) {
	if err := <-started; err == nil {
		_ = killProcessGroup(p.cmd.Process)
		_ = p.cmd.Wait()
	}
}

// Stdout returns the diagnostic channel.
func (p *LintProcess) Stdout() io.Reader {
	return p.stdout
}

// Stderr returns the progress channel.
func (p *LintProcess) Stderr() io.Reader {
	return p.stderr
}

// Wait waits for the tool to exit.
// exec.Cmd.Wait closes both pipes, so the caller must finish reading first.
func (p *LintProcess) Wait() (*ProcessResult, error) {
	if p.cmd == nil {
		return nil, errors.New("process not started")
	}

	err := p.cmd.Wait()
	if err == nil {
		return &ProcessResult{ExitCode: 0}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("process wait failed: %w", err)
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		return &ProcessResult{ExitCode: status.ExitStatus()}, nil
	}
	return &ProcessResult{ExitCode: -1}, nil
}

// Kill terminates the tool and its process group, then closes both read
// ends. Reads in flight fail with a closed-file error.
func (p *LintProcess) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	err := killProcessGroup(p.cmd.Process)
	if p.stdout != nil {
		_ = p.stdout.Close()
	}
	if p.stderr != nil {
		_ = p.stderr.Close()
	}
	return err
}

// deduplicateEnv keeps the last occurrence of each env var key so
// configured entries win over inherited ones.
func deduplicateEnv(env []string) []string {
	seen := make(map[string]int, len(env))
	for i, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		seen[key] = i
	}
	result := make([]string, 0, len(seen))
	for i, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		if seen[key] == i {
			result = append(result, entry)
		}
	}
	return result
}
