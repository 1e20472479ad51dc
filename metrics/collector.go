// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf package
// with no internal dependencies. Pipeline and policy counters are absorbed at
// run completion rather than recorded live, avoiding double-counting.
package metrics

import "sync"

// PipelineCounts mirrors the streaming pipeline's counters.
// Kept here as plain integers so metrics does not import the pipeline.
type PipelineCounts struct {
	Chunks           int64
	Bytes            int64
	Modules          int64
	MalformedRecords int64
	Messages         int64
	Duplicates       int64
	Groups           int64
}

// Snapshot is an immutable point-in-time view of all run metrics.
type Snapshot struct {
	// Run lifecycle
	RunsStarted  int64
	RunsComplete int64
	RunsPartial  int64
	RunsFailed   int64
	RunsAborted  int64

	// Process
	LaunchSuccess int64
	LaunchFailure int64
	ReadErrors    int64

	// Pipeline (absorbed at run completion)
	Pipeline PipelineCounts

	// Persistence (absorbed from policy stats at run completion)
	GroupsReceived  int64
	GroupsPersisted int64
	GroupsDropped   int64
	FlushTriggers   map[string]int64

	// Lode / Storage
	LodeWriteSuccess int64
	LodeWriteFailure int64

	// Dimensions (informational, set at construction)
	Policy         string
	StorageBackend string
	RunID          string
	Tool           string
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	runsStarted  int64
	runsComplete int64
	runsPartial  int64
	runsFailed   int64
	runsAborted  int64

	launchSuccess int64
	launchFailure int64
	readErrors    int64

	pipeline PipelineCounts

	groupsReceived  int64
	groupsPersisted int64
	groupsDropped   int64
	flushTriggers   map[string]int64

	lodeWriteSuccess int64
	lodeWriteFailure int64

	policy         string
	storageBackend string
	runID          string
	tool           string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(policy, storageBackend, runID, tool string) *Collector {
	return &Collector{
		policy:         policy,
		storageBackend: storageBackend,
		runID:          runID,
		tool:           tool,
	}
}

func (c *Collector) inc(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// --- Run lifecycle ---

// IncRunStarted records a run start.
func (c *Collector) IncRunStarted() {
	if c == nil {
		return
	}
	c.inc(&c.runsStarted)
}

// IncRunComplete records a run where every requested file was processed.
func (c *Collector) IncRunComplete() {
	if c == nil {
		return
	}
	c.inc(&c.runsComplete)
}

// IncRunPartial records a run that exited normally with files missing.
func (c *Collector) IncRunPartial() {
	if c == nil {
		return
	}
	c.inc(&c.runsPartial)
}

// IncRunFailed records a license, version, process or timeout failure.
func (c *Collector) IncRunFailed() {
	if c == nil {
		return
	}
	c.inc(&c.runsFailed)
}

// IncRunAborted records a user abort.
func (c *Collector) IncRunAborted() {
	if c == nil {
		return
	}
	c.inc(&c.runsAborted)
}

// --- Process ---

// IncLaunchSuccess records a successful tool launch.
func (c *Collector) IncLaunchSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.launchSuccess)
}

// IncLaunchFailure records a failed tool launch.
func (c *Collector) IncLaunchFailure() {
	if c == nil {
		return
	}
	c.inc(&c.launchFailure)
}

// IncReadErrors records a channel read failure.
func (c *Collector) IncReadErrors() {
	if c == nil {
		return
	}
	c.inc(&c.readErrors)
}

// --- Lode / Storage ---
// Lode counters are per-call, not per-record.

// IncLodeWriteSuccess records a successful Lode write operation.
func (c *Collector) IncLodeWriteSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.lodeWriteSuccess)
}

// IncLodeWriteFailure records a failed Lode write operation.
func (c *Collector) IncLodeWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.lodeWriteFailure)
}

// --- Absorbed counters ---

// AbsorbPipelineStats copies the pipeline's final counters into the collector.
func (c *Collector) AbsorbPipelineStats(counts PipelineCounts) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.pipeline = counts
	c.mu.Unlock()
}

// AbsorbPolicyStats copies persistence counters from policy.Stats.
// Called once after run completion with the final policy stats snapshot.
// flushTriggers is nil for policies that do not batch.
func (c *Collector) AbsorbPolicyStats(received, persisted, dropped int64, flushTriggers map[string]int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.groupsReceived = received
	c.groupsPersisted = persisted
	c.groupsDropped = dropped
	c.flushTriggers = copyCounts(flushTriggers)
	c.mu.Unlock()
}

func copyCounts(m map[string]int64) map[string]int64 {
	if m == nil {
		return nil
	}
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RunsStarted:  c.runsStarted,
		RunsComplete: c.runsComplete,
		RunsPartial:  c.runsPartial,
		RunsFailed:   c.runsFailed,
		RunsAborted:  c.runsAborted,

		LaunchSuccess: c.launchSuccess,
		LaunchFailure: c.launchFailure,
		ReadErrors:    c.readErrors,

		Pipeline: c.pipeline,

		GroupsReceived:  c.groupsReceived,
		GroupsPersisted: c.groupsPersisted,
		GroupsDropped:   c.groupsDropped,
		FlushTriggers:   copyCounts(c.flushTriggers),

		LodeWriteSuccess: c.lodeWriteSuccess,
		LodeWriteFailure: c.lodeWriteFailure,

		Policy:         c.policy,
		StorageBackend: c.storageBackend,
		RunID:          c.runID,
		Tool:           c.tool,
	}
}
