package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

func TestSplitFiles(t *testing.T) {
	files := []string{"a.c", "b.c", "c.c", "d.c", "e.c"}

	tests := []struct {
		name   string
		base   int
		budget int
		want   [][]string
	}{
		{"disabled", 10, -1, [][]string{files}},
		{"fits", 10, 100, [][]string{files}},
		{"pairs", 10, 18, [][]string{{"a.c", "b.c"}, {"c.c", "d.c"}, {"e.c"}}},
		{"oversized file gets its own batch", 10, 11, [][]string{{"a.c"}, {"b.c"}, {"c.c"}, {"d.c"}, {"e.c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFiles(files, tt.base, tt.budget)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitFiles = %v, want %v", got, tt.want)
			}
		})
	}

	if got := SplitFiles(nil, 0, 100); got != nil {
		t.Errorf("SplitFiles(nil) = %v, want nil", got)
	}
}

func TestCommandLineLen_QuotesWhitespace(t *testing.T) {
	if got := CommandLineLen("lint", []string{"a.c"}); got != 9 {
		t.Errorf("CommandLineLen = %d, want 9", got)
	}
	if got := CommandLineLen("lint", []string{"my file.c"}); got != 17 {
		t.Errorf("CommandLineLen with space = %d, want 17", got)
	}
}

// sessionFactory launches a mock per batch that reports every file it was given.
type sessionFactory struct {
	t      *testing.T
	banner string
	failOn int

	mu       sync.Mutex
	launches [][]string
}

func (f *sessionFactory) create(pc *ProcessConfig) Process {
	f.mu.Lock()
	defer f.mu.Unlock()

	files := append([]string(nil), pc.Args[len(DefaultToolArgs):]...)
	f.launches = append(f.launches, files)

	var stderr string
	if f.banner != "" {
		stderr = f.banner
	} else {
		stderr = progressScript(files...)
	}
	proc := newMockProcess(stderr, loadFixture(f.t, "module_stream_b.xml"))
	if f.failOn == len(f.launches) {
		proc.startErr = errors.New("spawn failed")
	}
	return proc
}

func newSessionConfig(f *sessionFactory, files []string, budget int) SessionConfig {
	n := 0
	return SessionConfig{
		Run: RunConfig{
			ToolPath:       "lint",
			Logger:         log.NewNopLogger(),
			ProcessFactory: f.create,
		},
		Files:          files,
		Tool:           "pclp",
		MaxCommandLine: budget,
		NewRunID: func() string {
			n++
			return fmt.Sprintf("run-%03d", n)
		},
	}
}

func TestRunSession_SplitsAndLinksBatches(t *testing.T) {
	files := []string{"a.c", "b.c", "c.c", "d.c"}
	factory := &sessionFactory{t: t}
	base := CommandLineLen("lint", BuildArgs(nil, "", nil))
	cfg := newSessionConfig(factory, files, base+8)

	sink := policy.NewStubSink()
	cfg.Run.Policy = policy.NewStrictPolicy(sink)

	result, err := RunSession(t.Context(), cfg)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Batches != 2 || len(result.Runs) != 2 {
		t.Fatalf("batches = %d, runs = %d, want 2/2", result.Batches, len(result.Runs))
	}
	wantLaunches := [][]string{{"a.c", "b.c"}, {"c.c", "d.c"}}
	if !reflect.DeepEqual(factory.launches, wantLaunches) {
		t.Errorf("launches = %v, want %v", factory.launches, wantLaunches)
	}

	first, second := result.Runs[0].RunMeta, result.Runs[1].RunMeta
	if first.RunID != "run-001" || first.ParentRunID != nil || first.Batch != 1 {
		t.Errorf("first batch meta = %+v", first)
	}
	if second.ParentRunID == nil || *second.ParentRunID != "run-001" || second.Batch != 2 || second.Batches != 2 {
		t.Errorf("second batch meta = %+v", second)
	}

	// The shared pipeline is reset per batch, so each batch emits the full stream.
	if result.Groups() != 16 {
		t.Errorf("Groups = %d, want 16", result.Groups())
	}
	if result.Status != types.RunStatusComplete {
		t.Errorf("Status = %s, want complete", result.Status)
	}
	if len(sink.WrittenRuns) != 2 {
		t.Errorf("run records = %d, want 2", len(sink.WrittenRuns))
	}
}

func TestRunSession_StopsOnLicenseError(t *testing.T) {
	factory := &sessionFactory{t: t, banner: "PC-lint Plus License Error\n"}
	cfg := newSessionConfig(factory, []string{"a.c", "b.c", "c.c"}, CommandLineLen("lint", BuildArgs(nil, "", nil))+4)

	result, err := RunSession(t.Context(), cfg)
	if err != nil {
		t.Fatalf("RunSession: %v", err)
	}

	if result.Batches != 3 {
		t.Errorf("Batches = %d, want 3", result.Batches)
	}
	if len(result.Runs) != 1 {
		t.Errorf("runs = %d, want 1", len(result.Runs))
	}
	if result.Status != types.RunStatusLicenseError {
		t.Errorf("Status = %s, want license_error", result.Status)
	}
}

func TestRunSession_LaunchFailureKeepsEarlierRuns(t *testing.T) {
	factory := &sessionFactory{t: t, failOn: 2}
	cfg := newSessionConfig(factory, []string{"a.c", "b.c"}, CommandLineLen("lint", BuildArgs(nil, "", nil))+4)

	result, err := RunSession(t.Context(), cfg)
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("err = %v, want ErrLaunch", err)
	}
	if len(result.Runs) != 1 {
		t.Errorf("runs = %d, want 1", len(result.Runs))
	}
}

func TestRunSession_Validation(t *testing.T) {
	factory := &sessionFactory{t: t}

	cfg := newSessionConfig(factory, nil, 0)
	if _, err := RunSession(t.Context(), cfg); err == nil {
		t.Error("expected error for empty file list")
	}

	cfg = newSessionConfig(factory, []string{"a.c"}, 0)
	cfg.Tool = ""
	if _, err := RunSession(t.Context(), cfg); err == nil {
		t.Error("expected error for missing tool name")
	}
}

func TestRunSession_PerBatchHooks(t *testing.T) {
	factory := &sessionFactory{t: t, failOn: 2}
	cfg := newSessionConfig(factory, []string{"a.c", "b.c"}, CommandLineLen("lint", BuildArgs(nil, "", nil))+4)

	sinks := map[string]*policy.StubSink{}
	var after []string
	var nilResults int
	cfg.BeforeRun = func(run *RunConfig) error {
		sink := policy.NewStubSink()
		sinks[run.RunMeta.RunID] = sink
		run.Policy = policy.NewStrictPolicy(sink)
		return nil
	}
	cfg.AfterRun = func(run *RunConfig, result *RunResult) {
		after = append(after, run.RunMeta.RunID)
		if result == nil {
			nilResults++
		}
	}

	if _, err := RunSession(t.Context(), cfg); !errors.Is(err, ErrLaunch) {
		t.Fatalf("err = %v, want ErrLaunch", err)
	}

	if !reflect.DeepEqual(after, []string{"run-001", "run-002"}) {
		t.Errorf("AfterRun calls = %v", after)
	}
	if nilResults != 1 {
		t.Errorf("nil results = %d, want 1 for the failed launch", nilResults)
	}
	first := sinks["run-001"].Stats()
	if first.RunsWritten != 1 || first.GroupsWritten != 8 {
		t.Errorf("run-001 sink = %+v, want 8 groups and 1 run", first)
	}
	for _, env := range sinks["run-001"].Groups() {
		if env.RunID != "run-001" {
			t.Fatalf("group of %s written to run-001's sink", env.RunID)
		}
	}
}

func TestRunSession_BeforeRunErrorStops(t *testing.T) {
	factory := &sessionFactory{t: t}
	cfg := newSessionConfig(factory, []string{"a.c"}, 0)
	boom := errors.New("no storage")
	cfg.BeforeRun = func(*RunConfig) error { return boom }

	result, err := RunSession(t.Context(), cfg)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(result.Runs) != 0 || len(factory.launches) != 0 {
		t.Errorf("runs = %d, launches = %d, want none", len(result.Runs), len(factory.launches))
	}
}
