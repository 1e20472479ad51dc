package policy

import (
	"context"
	"sync"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Sink abstracts persistence for policies.
// Implementations may write to storage, forward to a queue, or stub for testing.
//
// WriteGroups is batch-oriented to serve both strict (batch of 1) and streaming policies.
type Sink interface {
	// WriteGroups persists a batch of groups.
	// Must preserve ordering within the batch.
	// Returns error on failure; caller decides whether to retry or fail.
	WriteGroups(ctx context.Context, groups []*types.GroupEnvelope) error

	// WriteRun persists a run summary.
	WriteRun(ctx context.Context, summary *types.RunSummary) error

	// Close releases any resources held by the sink.
	Close() error
}

// WriteOp represents a write operation for ordering verification.
type WriteOp struct {
	Type   string // "groups" or "run"
	Groups []*types.GroupEnvelope
	Run    *types.RunSummary
}

// StubSink is a test sink that accepts writes without persisting.
// Tracks write statistics for test assertions.
type StubSink struct {
	mu sync.Mutex

	// GroupsWritten is the total count of groups written.
	GroupsWritten int64
	// GroupBatches is the number of WriteGroups calls.
	GroupBatches int64
	// RunsWritten is the number of WriteRun calls.
	RunsWritten int64
	// Closed indicates whether Close was called.
	Closed bool

	// WrittenGroups stores all written groups for inspection.
	WrittenGroups []*types.GroupEnvelope
	// WrittenRuns stores all written run summaries.
	WrittenRuns []*types.RunSummary

	// WriteOrder tracks the order of write operations.
	WriteOrder []WriteOp

	// ErrorOnWrite, if non-nil, is returned by WriteGroups and WriteRun.
	ErrorOnWrite error
}

// NewStubSink creates a new stub sink for testing.
func NewStubSink() *StubSink {
	return &StubSink{}
}

// WriteGroups records the groups without persisting.
func (s *StubSink) WriteGroups(_ context.Context, groups []*types.GroupEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil {
		return s.ErrorOnWrite
	}

	s.GroupBatches++
	s.GroupsWritten += int64(len(groups))
	s.WrittenGroups = append(s.WrittenGroups, groups...)
	s.WriteOrder = append(s.WriteOrder, WriteOp{Type: "groups", Groups: groups})
	return nil
}

// WriteRun records the summary without persisting.
func (s *StubSink) WriteRun(_ context.Context, summary *types.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil {
		return s.ErrorOnWrite
	}

	s.RunsWritten++
	s.WrittenRuns = append(s.WrittenRuns, summary)
	s.WriteOrder = append(s.WriteOrder, WriteOp{Type: "run", Run: summary})
	return nil
}

// SetError replaces ErrorOnWrite under the sink lock.
func (s *StubSink) SetError(err error) {
	s.mu.Lock()
	s.ErrorOnWrite = err
	s.mu.Unlock()
}

// Close marks the sink as closed.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closed = true
	return nil
}

// Stats returns a snapshot of sink statistics.
func (s *StubSink) Stats() StubSinkStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return StubSinkStats{
		GroupsWritten: s.GroupsWritten,
		GroupBatches:  s.GroupBatches,
		RunsWritten:   s.RunsWritten,
		Closed:        s.Closed,
	}
}

// Groups returns a copy of the written groups.
func (s *StubSink) Groups() []*types.GroupEnvelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.GroupEnvelope, len(s.WrittenGroups))
	copy(out, s.WrittenGroups)
	return out
}

// StubSinkStats is a snapshot of StubSink statistics.
type StubSinkStats struct {
	GroupsWritten int64
	GroupBatches  int64
	RunsWritten   int64
	Closed        bool
}
