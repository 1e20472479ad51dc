// Package policy decides how emitted message groups reach persistent storage.
package policy

import (
	"context"
	"sync"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Policy defines the group persistence interface.
// Policies control buffering and batching of group writes.
//
// Rules:
//   - Groups are never reordered; a batch preserves emission order
//   - Policy must not alter group contents
//   - Policy failure is reported to the caller; it does not change the lint outcome
type Policy interface {
	// IngestGroup accepts one emitted group.
	// Must not block the caller on storage latency unless the policy is strict.
	IngestGroup(ctx context.Context, envelope *types.GroupEnvelope) error

	// RecordRun persists the run summary.
	// Buffered groups are flushed before the summary is written.
	RecordRun(ctx context.Context, summary *types.RunSummary) error

	// Flush flushes any buffered groups.
	Flush(ctx context.Context) error

	// Close releases policy resources and the underlying sink.
	Close() error

	// Stats returns a consistent snapshot of policy metrics.
	Stats() Stats
}

// Stats represents policy observability metrics.
type Stats struct {
	// TotalGroups is the number of groups received.
	TotalGroups int64
	// GroupsPersisted is the number of groups written to the sink.
	GroupsPersisted int64
	// GroupsDropped is the number of groups discarded without persisting.
	GroupsDropped int64
	// MessagesPersisted counts messages across persisted groups.
	MessagesPersisted int64
	// RunsRecorded is the number of run summaries written.
	RunsRecorded int64
	// BufferedGroups is the number of groups waiting for a flush.
	BufferedGroups int64
	// FlushCount is the number of flush operations.
	FlushCount int64
	// Errors is the count of sink failures.
	Errors int64
}

// statsRecorder is an internal helper for stats bookkeeping.
//
// Lock discipline:
//   - StrictPolicy and NoopPolicy use the locking methods
//   - StreamingPolicy uses the Locked methods while holding StreamingPolicy.mu,
//     keeping buffer state and counters consistent
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{}
}

func (r *statsRecorder) incTotalGroups() {
	r.mu.Lock()
	r.stats.TotalGroups++
	r.mu.Unlock()
}

func (r *statsRecorder) incPersisted(groups []*types.GroupEnvelope) {
	r.mu.Lock()
	r.incPersistedLocked(groups)
	r.mu.Unlock()
}

func (r *statsRecorder) incDropped() {
	r.mu.Lock()
	r.stats.GroupsDropped++
	r.mu.Unlock()
}

func (r *statsRecorder) incRuns() {
	r.mu.Lock()
	r.stats.RunsRecorded++
	r.mu.Unlock()
}

func (r *statsRecorder) incErrors() {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()
}

func (r *statsRecorder) incFlush() {
	r.mu.Lock()
	r.stats.FlushCount++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// --- Locked methods for StreamingPolicy ---
// Caller must hold StreamingPolicy.mu.

func (r *statsRecorder) incTotalGroupsLocked() {
	r.stats.TotalGroups++
}

func (r *statsRecorder) incPersistedLocked(groups []*types.GroupEnvelope) {
	r.stats.GroupsPersisted += int64(len(groups))
	for _, g := range groups {
		r.stats.MessagesPersisted += int64(g.Group.Len())
	}
}

func (r *statsRecorder) incRunsLocked() {
	r.stats.RunsRecorded++
}

func (r *statsRecorder) incErrorsLocked() {
	r.stats.Errors++
}

func (r *statsRecorder) incFlushLocked() {
	r.stats.FlushCount++
}

// snapshotLocked returns a snapshot with the given buffered count.
func (r *statsRecorder) snapshotLocked(buffered int64) Stats {
	s := r.stats
	s.BufferedGroups = buffered
	return s
}
