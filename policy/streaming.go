package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// StreamingConfig configures a StreamingPolicy.
type StreamingConfig struct {
	// FlushCount triggers a flush after N groups accumulate.
	// Zero means count-based flush is disabled.
	FlushCount int

	// FlushInterval triggers a flush every interval.
	// Zero means interval-based flush is disabled.
	FlushInterval time.Duration

	// Logger is an optional logger for policy observability.
	Logger *log.Logger
}

// FlushTrigger identifies which trigger caused a flush.
type FlushTrigger string

const (
	// FlushTriggerCount indicates a count-threshold flush.
	FlushTriggerCount FlushTrigger = "count"
	// FlushTriggerInterval indicates an interval-based flush.
	FlushTriggerInterval FlushTrigger = "interval"
	// FlushTriggerTermination indicates a run termination flush.
	FlushTriggerTermination FlushTrigger = "termination"
)

// ErrStreamingInvalidConfig is returned when StreamingConfig is invalid.
var ErrStreamingInvalidConfig = errors.New("invalid streaming config: at least one of FlushCount or FlushInterval must be set")

// StreamingPolicy implements continuous persistence with batched writes.
//
//   - No drops: every group is persisted
//   - Count and interval flushes run on the policy's own goroutine, so
//     IngestGroup never waits on the sink
//   - On flush failure the batch is restored ahead of newer groups and
//     retried on the next trigger
//
// Thread safety:
//   - mu guards the buffer and stats
//   - flushMu serializes flushes from the loop and from Flush/RecordRun
type StreamingPolicy struct {
	sink   Sink
	config StreamingConfig
	logger *log.Logger

	mu     sync.Mutex
	buffer []*types.GroupEnvelope
	stats  *statsRecorder

	flushMu sync.Mutex

	// Guarded by mu.
	flushByCount       int64
	flushByInterval    int64
	flushByTermination int64

	kickCh   chan struct{}
	stopCh   chan struct{}
	loopDone chan struct{}
	stopped  bool
}

// NewStreamingPolicy creates a new streaming policy and starts its flush loop.
func NewStreamingPolicy(sink Sink, config StreamingConfig) (*StreamingPolicy, error) {
	if config.FlushCount <= 0 && config.FlushInterval <= 0 {
		return nil, ErrStreamingInvalidConfig
	}

	p := &StreamingPolicy{
		sink:     sink,
		config:   config,
		logger:   config.Logger,
		buffer:   make([]*types.GroupEnvelope, 0, 64),
		stats:    newStatsRecorder(),
		kickCh:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	go p.flushLoop()

	return p, nil
}

// IngestGroup appends the group to the buffer.
// Reaching the count threshold wakes the flush loop; the caller does not wait.
func (p *StreamingPolicy) IngestGroup(_ context.Context, envelope *types.GroupEnvelope) error {
	p.mu.Lock()
	p.stats.incTotalGroupsLocked()
	p.buffer = append(p.buffer, envelope)
	kick := p.config.FlushCount > 0 && len(p.buffer) >= p.config.FlushCount
	p.mu.Unlock()

	if kick {
		select {
		case p.kickCh <- struct{}{}:
		default:
		}
	}
	return nil
}

// RecordRun flushes buffered groups, then writes the run summary.
// The summary is not written if the flush fails.
func (p *StreamingPolicy) RecordRun(ctx context.Context, summary *types.RunSummary) error {
	if err := p.triggerFlush(ctx, FlushTriggerTermination); err != nil {
		return err
	}

	if err := p.sink.WriteRun(ctx, summary); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.stats.incRunsLocked()
	p.mu.Unlock()
	return nil
}

// Flush flushes all buffered groups (termination trigger).
func (p *StreamingPolicy) Flush(ctx context.Context) error {
	return p.triggerFlush(ctx, FlushTriggerTermination)
}

// triggerFlush swaps the buffer under mu, writes outside mu, and
// restores the batch on failure.
func (p *StreamingPolicy) triggerFlush(ctx context.Context, trigger FlushTrigger) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	switch trigger {
	case FlushTriggerCount:
		p.flushByCount++
	case FlushTriggerInterval:
		p.flushByInterval++
	case FlushTriggerTermination:
		p.flushByTermination++
	}
	p.stats.incFlushLocked()

	batch := p.buffer
	if len(batch) == 0 {
		p.mu.Unlock()
		return nil
	}
	p.buffer = make([]*types.GroupEnvelope, 0, 64)
	p.mu.Unlock()

	if err := p.sink.WriteGroups(ctx, batch); err != nil {
		p.mu.Lock()
		p.stats.incErrorsLocked()
		p.buffer = append(batch, p.buffer...)
		p.mu.Unlock()
		p.logFlushFailure(trigger, len(batch), err)
		return err
	}

	p.mu.Lock()
	p.stats.incPersistedLocked(batch)
	p.mu.Unlock()

	p.logFlush(trigger, len(batch))
	return nil
}

// Close stops the flush loop, flushes what remains, and closes the sink.
func (p *StreamingPolicy) Close() error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.stopCh)
	}
	p.mu.Unlock()
	<-p.loopDone

	flushErr := p.Flush(context.Background())
	return errors.Join(flushErr, p.sink.Close())
}

// Stats returns a consistent snapshot of policy statistics.
func (p *StreamingPolicy) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stats.snapshotLocked(int64(len(p.buffer)))
}

// FlushTriggerStats returns per-trigger flush counts.
func (p *StreamingPolicy) FlushTriggerStats() map[FlushTrigger]int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return map[FlushTrigger]int64{
		FlushTriggerCount:       p.flushByCount,
		FlushTriggerInterval:    p.flushByInterval,
		FlushTriggerTermination: p.flushByTermination,
	}
}

// flushLoop serves count kicks and interval ticks until Close.
func (p *StreamingPolicy) flushLoop() {
	defer close(p.loopDone)

	var tick <-chan time.Time
	if p.config.FlushInterval > 0 {
		ticker := time.NewTicker(p.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.kickCh:
			_ = p.triggerFlush(context.Background(), FlushTriggerCount)
		case <-tick:
			if p.buffered() > 0 {
				_ = p.triggerFlush(context.Background(), FlushTriggerInterval)
			}
		case <-p.stopCh:
			return
		}
	}
}

func (p *StreamingPolicy) buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buffer)
}

// --- Logging helpers ---

func (p *StreamingPolicy) logFlush(trigger FlushTrigger, groups int) {
	if p.logger == nil {
		return
	}
	p.logger.Debug("streaming flush", map[string]any{
		"trigger": string(trigger),
		"groups":  groups,
		"policy":  "streaming",
	})
}

func (p *StreamingPolicy) logFlushFailure(trigger FlushTrigger, groups int, err error) {
	if p.logger == nil {
		return
	}
	p.logger.Error("streaming flush failed", map[string]any{
		"trigger": string(trigger),
		"groups":  groups,
		"error":   err.Error(),
		"policy":  "streaming",
	})
}

var _ Policy = (*StreamingPolicy)(nil)
