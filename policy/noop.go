package policy

import (
	"context"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// NoopPolicy discards every group. Used when no storage is configured.
// Groups still reach observers; only persistence is skipped.
type NoopPolicy struct {
	stats *statsRecorder
}

// NewNoopPolicy creates a new no-op policy.
func NewNoopPolicy() *NoopPolicy {
	return &NoopPolicy{stats: newStatsRecorder()}
}

// IngestGroup counts the group as received and dropped.
func (p *NoopPolicy) IngestGroup(_ context.Context, _ *types.GroupEnvelope) error {
	p.stats.incTotalGroups()
	p.stats.incDropped()
	return nil
}

// RecordRun is a no-op.
func (p *NoopPolicy) RecordRun(_ context.Context, _ *types.RunSummary) error {
	return nil
}

// Flush is a no-op.
func (p *NoopPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close is a no-op.
func (p *NoopPolicy) Close() error {
	return nil
}

// Stats returns the policy statistics.
func (p *NoopPolicy) Stats() Stats {
	return p.stats.snapshot()
}

var _ Policy = (*NoopPolicy)(nil)
