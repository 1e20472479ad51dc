package policy

import (
	"context"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// StrictPolicy implements synchronous, unbuffered persistence.
//
//   - No buffering: each group is written immediately as a batch of 1
//   - Backpressure: the caller blocks on sink latency
//   - Sink errors are returned to the caller
type StrictPolicy struct {
	sink  Sink
	stats *statsRecorder
}

// NewStrictPolicy creates a new strict policy writing to the given sink.
func NewStrictPolicy(sink Sink) *StrictPolicy {
	return &StrictPolicy{
		sink:  sink,
		stats: newStatsRecorder(),
	}
}

// IngestGroup writes the group immediately to the sink.
func (p *StrictPolicy) IngestGroup(ctx context.Context, envelope *types.GroupEnvelope) error {
	p.stats.incTotalGroups()

	batch := []*types.GroupEnvelope{envelope}
	if err := p.sink.WriteGroups(ctx, batch); err != nil {
		p.stats.incErrors()
		return err
	}

	p.stats.incPersisted(batch)
	return nil
}

// RecordRun writes the run summary immediately to the sink.
func (p *StrictPolicy) RecordRun(ctx context.Context, summary *types.RunSummary) error {
	if err := p.sink.WriteRun(ctx, summary); err != nil {
		p.stats.incErrors()
		return err
	}
	p.stats.incRuns()
	return nil
}

// Flush is a no-op for strict policy (nothing is buffered).
func (p *StrictPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close closes the underlying sink.
func (p *StrictPolicy) Close() error {
	return p.sink.Close()
}

// Stats returns policy statistics.
func (p *StrictPolicy) Stats() Stats {
	return p.stats.snapshot()
}

var _ Policy = (*StrictPolicy)(nil)
