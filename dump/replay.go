package dump

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
)

// ReplayProcess plays a dump back as if it were the tool.
//
// Each recorded chunk is written to its channel's pipe with a single
// Write, so a reader using the recorded read size sees the original
// chunk boundaries. Channels are replayed in recorded order.
type ReplayProcess struct {
	reader *Reader
	speed  float64

	outR, errR *io.PipeReader
	outW, errW *io.PipeWriter

	killed   atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	// Set by play before done is closed.
	exitCode int
	err      error
	chunks   int64
}

var _ runtime.Process = (*ReplayProcess)(nil)

// NewReplayProcess creates an unstarted replay of r.
// speed scales the recorded timing: 1 is real time, 0 replays without delay.
func NewReplayProcess(r *Reader, speed float64) *ReplayProcess {
	p := &ReplayProcess{
		reader: r,
		speed:  speed,
		done:   make(chan struct{}),
	}
	p.outR, p.outW = io.Pipe()
	p.errR, p.errW = io.Pipe()
	return p
}

// Factory returns a ProcessFactory that hands out this replay.
// A ReplayProcess plays once; the factory must be used for a single run.
func (p *ReplayProcess) Factory() runtime.ProcessFactory {
	return func(*runtime.ProcessConfig) runtime.Process { return p }
}

// Start begins playback.
func (p *ReplayProcess) Start(ctx context.Context) error {
	go p.play(ctx)
	return nil
}

func (p *ReplayProcess) play(ctx context.Context) {
	defer p.finish()

	start := time.Now()
	for {
		chunk, err := p.reader.Next()
		if errors.Is(err, io.EOF) {
			p.exitCode = p.reader.Exit().ExitCode
			return
		}
		if err != nil {
			p.err = err
			return
		}

		if p.speed > 0 {
			due := time.Duration(float64(chunk.OffsetMs)*float64(time.Millisecond)/p.speed) - time.Since(start)
			if due > 0 {
				select {
				case <-time.After(due):
				case <-ctx.Done():
					return
				}
			}
		}

		var w *io.PipeWriter
		switch chunk.Channel {
		case runtime.ChannelDiagnostic:
			w = p.outW
		case runtime.ChannelProgress:
			w = p.errW
		default:
			continue
		}
		if _, err := w.Write(chunk.Data); err != nil {
			return
		}
		p.chunks++
	}
}

func (p *ReplayProcess) finish() {
	_ = p.outW.Close()
	_ = p.errW.Close()
	p.doneOnce.Do(func() { close(p.done) })
}

// Stdout returns the replayed diagnostic channel.
func (p *ReplayProcess) Stdout() io.Reader { return p.outR }

// Stderr returns the replayed progress channel.
func (p *ReplayProcess) Stderr() io.Reader { return p.errR }

// Wait blocks until playback ends and returns the recorded exit code.
// A damaged dump is reported as an error.
func (p *ReplayProcess) Wait() (*runtime.ProcessResult, error) {
	<-p.done
	if p.killed.Load() {
		return &runtime.ProcessResult{ExitCode: -1}, nil
	}
	if p.err != nil {
		return nil, p.err
	}
	return &runtime.ProcessResult{ExitCode: p.exitCode}, nil
}

// Kill stops playback. Readers see EOF.
func (p *ReplayProcess) Kill() error {
	p.killed.Store(true)
	_ = p.outW.Close()
	_ = p.errW.Close()
	return nil
}

// Chunks returns the number of chunks played. Valid after Wait.
func (p *ReplayProcess) Chunks() int64 {
	<-p.done
	return p.chunks
}
