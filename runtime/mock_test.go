package runtime

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/stream"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// writeOrder controls how mockProcess interleaves its two channels.
type writeOrder int

const (
	writeConcurrent writeOrder = iota
	writeStdoutFirst
	writeStderrFirst
)

// mockProcess is a test process that replays scripted output on two pipes.
// When hold is set it keeps both pipes open after writing, simulating a
// tool that never exits, until Kill is called.
type mockProcess struct {
	stderr      string
	stdout      []byte
	stdoutChunk int
	stderrChunk int
	order       writeOrder
	hold        bool
	exitCode    int
	startErr    error
	stdoutErr   error // closes stdout with this error after writing

	outR, errR *io.PipeReader
	outW, errW *io.PipeWriter

	started  atomic.Bool
	killed   atomic.Bool
	exited   chan struct{}
	exitOnce sync.Once
}

func newMockProcess(stderr string, stdout []byte) *mockProcess {
	p := &mockProcess{
		stderr:      stderr,
		stdout:      stdout,
		stdoutChunk: 97,
		exited:      make(chan struct{}),
	}
	p.outR, p.outW = io.Pipe()
	p.errR, p.errW = io.Pipe()
	return p
}

func (p *mockProcess) Start(_ context.Context) error {
	if p.startErr != nil {
		return p.startErr
	}
	p.started.Store(true)
	go p.run()
	return nil
}

func (p *mockProcess) run() {
	writeOut := func() { writeChunks(p.outW, p.stdout, p.stdoutChunk) }
	writeErr := func() { writeChunks(p.errW, []byte(p.stderr), p.stderrChunk) }

	switch p.order {
	case writeStdoutFirst:
		writeOut()
		writeErr()
	case writeStderrFirst:
		writeErr()
		writeOut()
	default:
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); writeOut() }()
		go func() { defer wg.Done(); writeErr() }()
		wg.Wait()
	}

	if p.hold {
		return
	}
	if p.stdoutErr != nil {
		_ = p.outW.CloseWithError(p.stdoutErr)
	} else {
		_ = p.outW.Close()
	}
	_ = p.errW.Close()
	p.exit()
}

func writeChunks(w io.Writer, data []byte, size int) {
	if size <= 0 {
		size = len(data)
	}
	for len(data) > 0 {
		n := min(size, len(data))
		if _, err := w.Write(data[:n]); err != nil {
			return
		}
		data = data[n:]
	}
}

func (p *mockProcess) exit() {
	p.exitOnce.Do(func() { close(p.exited) })
}

func (p *mockProcess) Stdout() io.Reader { return p.outR }

func (p *mockProcess) Stderr() io.Reader { return p.errR }

func (p *mockProcess) Wait() (*ProcessResult, error) {
	<-p.exited
	if p.killed.Load() {
		return &ProcessResult{ExitCode: -1}, nil
	}
	return &ProcessResult{ExitCode: p.exitCode}, nil
}

func (p *mockProcess) Kill() error {
	p.killed.Store(true)
	_ = p.outW.Close()
	_ = p.errW.Close()
	p.exit()
	return nil
}

// recorder is a thread-safe Observer.
type recorder struct {
	mu        sync.Mutex
	groups    []*types.GroupEnvelope
	ticks     int
	completed []*RunResult
}

func (r *recorder) GroupReady(envelope *types.GroupEnvelope) {
	r.mu.Lock()
	r.groups = append(r.groups, envelope)
	r.mu.Unlock()
}

func (r *recorder) ProgressTick(completed int) {
	r.mu.Lock()
	r.ticks += completed
	r.mu.Unlock()
}

func (r *recorder) RunComplete(result *RunResult) {
	r.mu.Lock()
	r.completed = append(r.completed, result)
	r.mu.Unlock()
}

func (r *recorder) groupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

func (r *recorder) tickCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

const testBanner = "PC-lint Plus 2.1 (build 7.0.42), Copyright Gimpel Software\n"

// progressScript builds a progress channel: banner, then one marker per file.
func progressScript(files ...string) string {
	var b strings.Builder
	b.WriteString(testBanner)
	for _, f := range files {
		b.WriteString(stream.ModuleMarker + f + " (C)\n")
	}
	return b.String()
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "stream", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func testMeta() *types.RunMeta {
	return &types.RunMeta{RunID: "run-001", Tool: "pclp", Batch: 1, Batches: 1}
}
