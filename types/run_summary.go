package types

import "time"

// GroupEnvelope carries one emitted group with its run identity.
// Seq starts at 1 and increases by one per group within a run.
type GroupEnvelope struct {
	RunID string       `json:"run_id" msgpack:"run_id"`
	Seq   int64        `json:"seq" msgpack:"seq"`
	Group MessageGroup `json:"group" msgpack:"group"`
}

// RunSummary is the terminal record of one lint tool invocation.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	ParentRunID *string   `json:"parent_run_id,omitempty"`
	Tool        string    `json:"tool"`
	Batch       int       `json:"batch"`
	Batches     int       `json:"batches"`
	Status      RunStatus `json:"status"`
	// Message is the human-readable failure payload. For license and
	// version failures it is the raw first line of the progress channel.
	Message   string    `json:"message,omitempty"`
	ExitCode  int       `json:"exit_code"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`

	FilesRequested int      `json:"files_requested"`
	FilesObserved  int      `json:"files_observed"`
	FilesMissing   []string `json:"files_missing,omitempty"`

	Modules          int64 `json:"modules"`
	Messages         int64 `json:"messages"`
	Duplicates       int64 `json:"duplicates"`
	MalformedRecords int64 `json:"malformed_records"`
	Groups           int64 `json:"groups"`
}
