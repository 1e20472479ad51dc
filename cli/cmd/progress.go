package cmd

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// progressObserver drives a file progress bar from progress ticks and
// counts groups as they stream in.
type progressObserver struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	groups int
}

func newProgressObserver(total int, w io.Writer) *progressObserver {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Linting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	)
	return &progressObserver{bar: bar}
}

func (p *progressObserver) GroupReady(_ *types.GroupEnvelope) {
	p.mu.Lock()
	p.groups++
	p.mu.Unlock()
}

func (p *progressObserver) ProgressTick(completed int) {
	_ = p.bar.Add(completed)
}

func (p *progressObserver) RunComplete(_ *runtime.RunResult) {}

// Groups returns the groups seen so far.
func (p *progressObserver) Groups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.groups
}

// Reset restarts the bar for a new session, e.g. a watch re-run.
func (p *progressObserver) Reset(total int) {
	p.bar.Reset()
	p.bar.ChangeMax(total)
	p.mu.Lock()
	p.groups = 0
	p.mu.Unlock()
}

// Finish completes the bar.
func (p *progressObserver) Finish() {
	_ = p.bar.Finish()
}

var _ runtime.Observer = (*progressObserver)(nil)
