package lode

import (
	"context"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// InstrumentedSink wraps a policy.Sink and counts each write call as a
// storage success or failure on the collector.
type InstrumentedSink struct {
	inner     policy.Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner policy.Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

func (s *InstrumentedSink) record(err error) error {
	if err != nil {
		s.collector.IncLodeWriteFailure()
	} else {
		s.collector.IncLodeWriteSuccess()
	}
	return err
}

// WriteGroups delegates to the inner sink.
func (s *InstrumentedSink) WriteGroups(ctx context.Context, groups []*types.GroupEnvelope) error {
	return s.record(s.inner.WriteGroups(ctx, groups))
}

// WriteRun delegates to the inner sink.
func (s *InstrumentedSink) WriteRun(ctx context.Context, summary *types.RunSummary) error {
	return s.record(s.inner.WriteRun(ctx, summary))
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

var _ policy.Sink = (*InstrumentedSink)(nil)
