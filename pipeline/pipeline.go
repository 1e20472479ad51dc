// Package pipeline moves raw tool output from the I/O reader to finished
// message groups on a single consumer goroutine.
//
// The producer side (Enqueue) never blocks: it appends to a FIFO under a
// briefly held mutex and signals a one-slot notify channel. The consumer
// owns the reassembly buffer, parser, dedup set and grouper; nothing else
// touches them.
//
// Lifecycle:
//
//	Idle --Start--> Running --Finish/Abort--> Draining --> Finished
//
// Chunks enqueued while Idle are held until Start. Discard tears the
// pipeline down without emitting anything.
//
// Queued bytes are capped. A chunk that would exceed the cap is refused
// rather than waited on, and Overflowed reports it.
package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/grouping"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/stream"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultMaxQueuedBytes caps bytes waiting for the consumer.
const DefaultMaxQueuedBytes = 64 << 20

// State is the pipeline lifecycle state.
type State int32

// Pipeline states.
const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Errors returned by lifecycle methods.
var (
	ErrNotIdle   = errors.New("pipeline: not idle")
	ErrNotClosed = errors.New("pipeline: still running")
)

// GroupFunc receives each finished group on the consumer goroutine.
// It must not call back into the pipeline.
type GroupFunc func(types.MessageGroup)

// Config configures a Pipeline.
type Config struct {
	// OnGroup receives every emitted group, in output order. Required.
	OnGroup GroupFunc
	// PathCacheSize bounds the parser's normalized path memo.
	// Zero selects stream.DefaultPathCacheSize.
	PathCacheSize int
	// MaxQueuedBytes caps bytes waiting for the consumer. Zero selects
	// DefaultMaxQueuedBytes; negative disables the cap.
	MaxQueuedBytes int64
	// Logger is optional.
	Logger *log.Logger
}

// Stats is a point-in-time view of pipeline counters.
type Stats struct {
	Chunks           int64
	Bytes            int64
	Modules          int64
	MalformedRecords int64
	Messages         int64
	Duplicates       int64
	Orphans          int64
	Groups           int64
}

type counters struct {
	chunks     atomic.Int64
	bytes      atomic.Int64
	modules    atomic.Int64
	malformed  atomic.Int64
	messages   atomic.Int64
	duplicates atomic.Int64
	orphans    atomic.Int64
	groups     atomic.Int64
}

func (c *counters) reset() {
	for _, v := range []*atomic.Int64{
		&c.chunks, &c.bytes, &c.modules, &c.malformed,
		&c.messages, &c.duplicates, &c.orphans, &c.groups,
	} {
		v.Store(0)
	}
}

// Pipeline is the producer/consumer bridge for one run at a time.
type Pipeline struct {
	onGroup GroupFunc
	logger  *log.Logger

	// mu guards queue, the flags and the channel swap in Reset.
	mu         sync.Mutex
	queue      *deque.Deque[[]byte]
	queued     int64
	maxQueued  int64
	overflowed bool
	finished   bool
	aborted  bool
	discard  bool
	started  bool

	notify   chan struct{}
	done     chan struct{}
	doneOnce *sync.Once

	state atomic.Int32
	stats counters

	// Consumer-owned.
	reassembler *stream.Reassembler
	parser      *stream.Parser
	dedup       *grouping.Deduplicator
	grouper     *grouping.Grouper
}

// New creates an idle Pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	maxQueued := cfg.MaxQueuedBytes
	if maxQueued == 0 {
		maxQueued = DefaultMaxQueuedBytes
	}
	p := &Pipeline{
		maxQueued:   maxQueued,
		onGroup:     cfg.OnGroup,
		logger:      logger,
		queue:       deque.New[[]byte](),
		reassembler: stream.NewReassembler(),
		parser:      stream.NewParser(cfg.PathCacheSize),
		dedup:       grouping.NewDeduplicator(),
		grouper:     grouping.NewGrouper(),
	}
	p.resetChannels()
	return p
}

func (p *Pipeline) resetChannels() {
	p.notify = make(chan struct{}, 1)
	p.done = make(chan struct{})
	p.doneOnce = &sync.Once{}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Enqueue hands a raw chunk to the consumer without blocking.
// The pipeline takes ownership of chunk; the caller must not modify it.
// Returns false if the pipeline no longer accepts input or the chunk
// would exceed the queued byte cap.
func (p *Pipeline) Enqueue(chunk []byte) bool {
	if len(chunk) == 0 {
		return true
	}

	n := int64(len(chunk))
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return false
	}
	if p.maxQueued > 0 && p.queued+n > p.maxQueued {
		p.overflowed = true
		p.mu.Unlock()
		return false
	}
	p.queue.PushBack(chunk)
	p.queued += n
	p.mu.Unlock()

	p.stats.chunks.Add(1)
	p.stats.bytes.Add(int64(len(chunk)))
	p.wake()
	return true
}

func (p *Pipeline) wake() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Start launches the consumer goroutine.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.started || p.State() != StateIdle {
		p.mu.Unlock()
		return ErrNotIdle
	}
	p.started = true
	p.mu.Unlock()

	p.state.Store(int32(StateRunning))
	go p.consume()
	return nil
}

// Finish tells the consumer no more chunks will arrive. The consumer
// drains the queue, extracts the residual module and flushes the last
// group before exiting. Finish does not wait; use Wait.
func (p *Pipeline) Finish() {
	p.close(false)
}

// Abort stops the pipeline and blocks until the consumer has exited.
// Chunks already queued are still processed before Abort returns.
func (p *Pipeline) Abort() {
	p.close(true)

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		_ = p.Start()
	}
	p.Wait()
}

// Discard stops the pipeline without processing or emitting anything
// further, and blocks until the consumer has exited.
func (p *Pipeline) Discard() {
	p.mu.Lock()
	p.finished = true
	p.discard = true
	p.queue.Clear()
	p.queued = 0
	started := p.started
	p.mu.Unlock()

	if !started {
		p.state.Store(int32(StateFinished))
		p.doneOnce.Do(func() { close(p.done) })
		return
	}
	p.wake()
	p.Wait()
}

func (p *Pipeline) close(abort bool) {
	p.mu.Lock()
	p.finished = true
	if abort {
		p.aborted = true
	}
	p.mu.Unlock()

	p.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
	p.wake()
}

// Wait blocks until the consumer has exited.
// It must only be called after Start, Abort or Discard.
func (p *Pipeline) Wait() {
	<-p.done
}

// Done returns a channel closed when the consumer has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Overflowed reports whether a chunk was refused for the byte cap
// during this run.
func (p *Pipeline) Overflowed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overflowed
}

// Aborted reports whether Abort was called during this run.
func (p *Pipeline) Aborted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aborted
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Chunks:           p.stats.chunks.Load(),
		Bytes:            p.stats.bytes.Load(),
		Modules:          p.stats.modules.Load(),
		MalformedRecords: p.stats.malformed.Load(),
		Messages:         p.stats.messages.Load(),
		Duplicates:       p.stats.duplicates.Load(),
		Orphans:          p.stats.orphans.Load(),
		Groups:           p.stats.groups.Load(),
	}
}

// Reset prepares a finished (or never started) pipeline for the next run.
// The reassembly buffer and dedup set are cleared.
func (p *Pipeline) Reset() error {
	switch p.State() {
	case StateRunning, StateDraining:
		return ErrNotClosed
	}

	p.mu.Lock()
	p.queue.Clear()
	p.queued = 0
	p.overflowed = false
	p.finished = false
	p.aborted = false
	p.discard = false
	p.started = false
	p.mu.Unlock()

	p.reassembler.Reset()
	p.dedup.Reset()
	p.grouper.Reset()
	p.stats.reset()
	p.mu.Lock()
	p.resetChannels()
	p.mu.Unlock()
	p.state.Store(int32(StateIdle))
	return nil
}

// SetOnGroup replaces the group callback. Only allowed while Idle, so a
// pipeline can be reused across runs with a fresh destination.
func (p *Pipeline) SetOnGroup(fn GroupFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.State() != StateIdle {
		return ErrNotIdle
	}
	p.onGroup = fn
	return nil
}

// next pops the oldest chunk. ok is false when the queue is empty.
func (p *Pipeline) next() (chunk []byte, ok, finished, discard bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.discard {
		return nil, false, true, true
	}
	if p.queue.Len() == 0 {
		return nil, false, p.finished, false
	}
	chunk = p.queue.PopFront()
	p.queued -= int64(len(chunk))
	return chunk, true, p.finished, false
}

func (p *Pipeline) consume() {
	// Reset may swap in the next run's channels before the defers run.
	p.mu.Lock()
	done, doneOnce := p.done, p.doneOnce
	p.mu.Unlock()
	defer doneOnce.Do(func() { close(done) })
	defer p.state.Store(int32(StateFinished))

	for {
		chunk, ok, finished, discard := p.next()
		if discard {
			return
		}
		if ok {
			p.process(chunk)
		}
		if finished {
			break
		}
		if !ok {
			<-p.notify
		}
	}

	p.state.Store(int32(StateDraining))
	p.drain()
}

// drain processes everything queued before the finish flag was observed,
// then the residual module at end of stream.
func (p *Pipeline) drain() {
	for {
		chunk, ok, _, discard := p.next()
		if discard {
			return
		}
		if !ok {
			break
		}
		p.process(chunk)
	}

	for !p.reassembler.Done() {
		p.handle(p.reassembler.Finish())
	}
	p.emit(p.grouper.Flush())

	p.logger.Debug("pipeline drained", map[string]any{
		"modules": p.stats.modules.Load(),
		"groups":  p.stats.groups.Load(),
		"aborted": p.Aborted(),
	})
}

func (p *Pipeline) process(chunk []byte) {
	p.reassembler.Write(chunk)
	p.handle(p.reassembler.Extract())
}

func (p *Pipeline) handle(modules []stream.Module) {
	for _, mod := range modules {
		p.stats.modules.Add(1)

		msgs, err := p.parser.Parse(mod)
		if err != nil {
			p.stats.malformed.Add(1)
			p.logger.Warn("skipping malformed module", map[string]any{
				"module": mod.Path,
				"error":  err.Error(),
			})
			continue
		}
		p.stats.messages.Add(int64(len(msgs)))

		accepted := p.dedup.Filter(msgs)
		p.stats.duplicates.Store(p.dedup.Duplicates())
		p.stats.orphans.Store(p.dedup.Orphans())

		p.emit(p.grouper.Add(accepted))
	}
}

func (p *Pipeline) emit(groups []types.MessageGroup) {
	for _, g := range groups {
		p.stats.groups.Add(1)
		if p.onGroup != nil {
			p.onGroup(g)
		}
	}
}
