// Package reader is the read side of the lintstream CLI.
//
// Commands read stored runs and groups only through a Reader, never from
// runtime internals. LodeReader is the implementation over a Lode dataset.
package reader

import (
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// RunView describes one stored run.
type RunView struct {
	RunID            string    `json:"run_id" yaml:"run_id"`
	ParentRunID      *string   `json:"parent_run_id" yaml:"parent_run_id"`
	Tool             string    `json:"tool" yaml:"tool"`
	Batch            int       `json:"batch" yaml:"batch"`
	Batches          int       `json:"batches" yaml:"batches"`
	Status           string    `json:"status" yaml:"status"`
	Message          string    `json:"message" yaml:"message"`
	ExitCode         int       `json:"exit_code" yaml:"exit_code"`
	StartedAt        time.Time `json:"started_at" yaml:"started_at"`
	DurationSeconds  float64   `json:"duration_seconds" yaml:"duration_seconds"`
	FilesRequested   int       `json:"files_requested" yaml:"files_requested"`
	FilesObserved    int       `json:"files_observed" yaml:"files_observed"`
	FilesMissing     []string  `json:"files_missing" yaml:"files_missing"`
	Messages         int64     `json:"messages" yaml:"messages"`
	Groups           int64     `json:"groups" yaml:"groups"`
	Duplicates       int64     `json:"duplicates" yaml:"duplicates"`
	MalformedRecords int64     `json:"malformed_records" yaml:"malformed_records"`
}

// NewRunView converts a stored run summary.
func NewRunView(s *types.RunSummary) *RunView {
	return &RunView{
		RunID:            s.RunID,
		ParentRunID:      s.ParentRunID,
		Tool:             s.Tool,
		Batch:            s.Batch,
		Batches:          s.Batches,
		Status:           string(s.Status),
		Message:          s.Message,
		ExitCode:         s.ExitCode,
		StartedAt:        s.StartedAt,
		DurationSeconds:  s.Duration,
		FilesRequested:   s.FilesRequested,
		FilesObserved:    s.FilesObserved,
		FilesMissing:     s.FilesMissing,
		Messages:         s.Messages,
		Groups:           s.Groups,
		Duplicates:       s.Duplicates,
		MalformedRecords: s.MalformedRecords,
	}
}

// GroupItem is one group flattened to its primary message.
type GroupItem struct {
	Seq           int64  `json:"seq" yaml:"seq"`
	File          string `json:"file" yaml:"file"`
	Line          int    `json:"line" yaml:"line"`
	Type          string `json:"type" yaml:"type"`
	Number        int    `json:"number" yaml:"number"`
	Description   string `json:"description" yaml:"description"`
	Supplementals int    `json:"supplementals" yaml:"supplementals"`
}

// NewGroupItems flattens envelopes for listing.
func NewGroupItems(groups []*types.GroupEnvelope) []GroupItem {
	items := make([]GroupItem, 0, len(groups))
	for _, g := range groups {
		p := g.Group.Primary()
		items = append(items, GroupItem{
			Seq:           g.Seq,
			File:          p.File,
			Line:          p.Line,
			Type:          string(p.Type),
			Number:        p.Number,
			Description:   p.Description,
			Supplementals: len(g.Group.Supplementals()),
		})
	}
	return items
}

// ListRunsOptions filters a run listing.
type ListRunsOptions struct {
	Tool   string
	Day    string
	Status string
	// Limit caps the result. Zero means no limit.
	Limit int
}

// ListRunItem is one row of a run listing.
type ListRunItem struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Tool      string    `json:"tool" yaml:"tool"`
	Batch     string    `json:"batch" yaml:"batch"`
	Status    string    `json:"status" yaml:"status"`
	Groups    int64     `json:"groups" yaml:"groups"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}

// CountItem is one bucket of a breakdown.
type CountItem struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

// RunStats is the message breakdown of one run.
type RunStats struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Status string `json:"status" yaml:"status"`
	Groups int    `json:"groups" yaml:"groups"`
	// Messages counts every message, supplementals included.
	Messages int `json:"messages" yaml:"messages"`
	// ByType counts primary messages per type, largest first.
	ByType []CountItem `json:"by_type" yaml:"by_type"`
	// ByFile counts groups per file of the primary message, largest first.
	ByFile []CountItem `json:"by_file" yaml:"by_file"`
	// TopNumbers are the most frequent message numbers.
	TopNumbers []CountItem `json:"top_numbers" yaml:"top_numbers"`
}

// MetricsSnapshot is a stored per-run metrics record.
type MetricsSnapshot struct {
	Ts               string           `json:"ts" yaml:"ts"`
	RunID            string           `json:"run_id" yaml:"run_id"`
	Tool             string           `json:"tool" yaml:"tool"`
	Policy           string           `json:"policy" yaml:"policy"`
	StorageBackend   string           `json:"storage_backend" yaml:"storage_backend"`
	RunsComplete     int64            `json:"runs_complete" yaml:"runs_complete"`
	RunsPartial      int64            `json:"runs_partial" yaml:"runs_partial"`
	RunsFailed       int64            `json:"runs_failed" yaml:"runs_failed"`
	RunsAborted      int64            `json:"runs_aborted" yaml:"runs_aborted"`
	LaunchFailure    int64            `json:"launch_failure" yaml:"launch_failure"`
	ReadErrors       int64            `json:"read_errors" yaml:"read_errors"`
	Chunks           int64            `json:"chunks" yaml:"chunks"`
	Bytes            int64            `json:"bytes" yaml:"bytes"`
	Modules          int64            `json:"modules" yaml:"modules"`
	MalformedRecords int64            `json:"malformed_records" yaml:"malformed_records"`
	Messages         int64            `json:"messages" yaml:"messages"`
	Duplicates       int64            `json:"duplicates" yaml:"duplicates"`
	Groups           int64            `json:"groups" yaml:"groups"`
	GroupsPersisted  int64            `json:"groups_persisted" yaml:"groups_persisted"`
	GroupsDropped    int64            `json:"groups_dropped" yaml:"groups_dropped"`
	LodeWriteSuccess int64            `json:"lode_write_success" yaml:"lode_write_success"`
	LodeWriteFailure int64            `json:"lode_write_failure" yaml:"lode_write_failure"`
	FlushTriggers    map[string]int64 `json:"flush_triggers,omitempty" yaml:"flush_triggers,omitempty"`
}
