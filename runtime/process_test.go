package runtime

import (
	"errors"
	"io"
	"os/exec"
	"reflect"
	"testing"
	"time"
)

func TestLintProcess_MissingBinary(t *testing.T) {
	proc := NewLintProcess(&ProcessConfig{ToolPath: "/nonexistent/lint-tool"})

	err := proc.Start(t.Context())
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("Start err = %v, want ErrLaunch", err)
	}
	var le *LaunchError
	if !errors.As(err, &le) || le.Path != "/nonexistent/lint-tool" {
		t.Errorf("LaunchError = %+v", le)
	}
	if _, err := proc.Wait(); err == nil {
		t.Error("Wait on an unstarted process must fail")
	}
}

func TestLintProcess_SeparatesChannels(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	proc := NewLintProcess(&ProcessConfig{
		ToolPath: sh,
		Args:     []string{"-c", `echo "banner" >&2; echo "$LINT_OUT"; exit 3`},
		Env:      []string{"LINT_OUT=diagnostics"},
	})
	if err := proc.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	errCh := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(proc.Stderr())
		errCh <- data
	}()
	stdout, _ := io.ReadAll(proc.Stdout())
	stderr := <-errCh

	result, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if string(stdout) != "diagnostics\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if string(stderr) != "banner\n" {
		t.Errorf("stderr = %q", stderr)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestLintProcess_Kill(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	proc := NewLintProcess(&ProcessConfig{ToolPath: sh, Args: []string{"-c", "exec sleep 30"}})
	if err := proc.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_, _ = io.ReadAll(proc.Stdout())
		_, _ = io.ReadAll(proc.Stderr())
		result, _ := proc.Wait()
		if result == nil || result.ExitCode != -1 {
			t.Errorf("killed process result = %+v, want exit -1", result)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("killed process was not reaped")
	}
}

func TestLintProcess_KillReleasesChannelsHeldByHelpers(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	// The backgrounded sleep inherits both pipes.
	proc := NewLintProcess(&ProcessConfig{ToolPath: sh, Args: []string{"-c", "echo started; sleep 30 & wait"}})
	if err := proc.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := make([]byte, len("started\n"))
	if _, err := io.ReadFull(proc.Stdout(), first); err != nil {
		t.Fatalf("read before kill: %v", err)
	}
	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_, _ = io.ReadAll(proc.Stdout())
		_, _ = io.ReadAll(proc.Stderr())
		_, _ = proc.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("readers still blocked after Kill")
	}
}

func TestDeduplicateEnv(t *testing.T) {
	env := []string{"PATH=/bin", "LINT=a", "HOME=/root", "LINT=b"}
	want := []string{"PATH=/bin", "HOME=/root", "LINT=b"}

	if got := deduplicateEnv(env); !reflect.DeepEqual(got, want) {
		t.Errorf("deduplicateEnv = %v, want %v", got, want)
	}
}
