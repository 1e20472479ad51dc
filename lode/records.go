package lode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// record_kind discriminator values. Each kind lands in its own partition.
const (
	RecordKindGroup   = "group"
	RecordKindRun     = "run"
	RecordKindMetrics = "metrics"
)

// PartitionKeys is the Hive layout shared by the write and read paths.
var PartitionKeys = []string{"tool", "day", "run_id", "record_kind"}

// MessageRecord is one stored message inside a GroupRecord.
type MessageRecord struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Type        string `json:"type"`
	Number      int    `json:"number"`
	Description string `json:"description"`
}

// GroupRecord is the storage format of one emitted message group.
type GroupRecord struct {
	RecordKind    string          `json:"record_kind"`
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	Seq           int64           `json:"seq"`
	File          string          `json:"file"`
	Line          int             `json:"line"`
	Type          string          `json:"type"`
	Number        int             `json:"number"`
	Messages      []MessageRecord `json:"messages"`
	Policy        string          `json:"policy"`

	// Partition keys
	Tool string `json:"tool"`
	Day  string `json:"day"`
}

// Envelope converts the record back into a group envelope.
func (r *GroupRecord) Envelope() *types.GroupEnvelope {
	msgs := make([]types.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msgs = append(msgs, types.Message{
			File:        m.File,
			Line:        m.Line,
			Type:        types.MessageType(m.Type),
			Number:      m.Number,
			Description: m.Description,
		})
	}
	return &types.GroupEnvelope{RunID: r.RunID, Seq: r.Seq, Group: types.MessageGroup{Messages: msgs}}
}

// RunRecord is the storage format of one run summary.
type RunRecord struct {
	RecordKind       string   `json:"record_kind"`
	SchemaVersion    string   `json:"schema_version"`
	RunID            string   `json:"run_id"`
	ParentRunID      *string  `json:"parent_run_id,omitempty"`
	Batch            int      `json:"batch"`
	Batches          int      `json:"batches"`
	Status           string   `json:"status"`
	Message          string   `json:"message,omitempty"`
	ExitCode         int      `json:"exit_code"`
	StartedAt        string   `json:"started_at"`
	DurationSeconds  float64  `json:"duration_seconds"`
	FilesRequested   int      `json:"files_requested"`
	FilesObserved    int      `json:"files_observed"`
	FilesMissing     []string `json:"files_missing,omitempty"`
	Modules          int64    `json:"modules"`
	Messages         int64    `json:"messages"`
	Duplicates       int64    `json:"duplicates"`
	MalformedRecords int64    `json:"malformed_records"`
	Groups           int64    `json:"groups"`
	Policy           string   `json:"policy"`

	// Partition keys
	Tool string `json:"tool"`
	Day  string `json:"day"`
}

// Summary converts the record back into a run summary.
func (r *RunRecord) Summary() *types.RunSummary {
	started, _ := time.Parse(time.RFC3339Nano, r.StartedAt)
	return &types.RunSummary{
		RunID:            r.RunID,
		ParentRunID:      r.ParentRunID,
		Tool:             r.Tool,
		Batch:            r.Batch,
		Batches:          r.Batches,
		Status:           types.RunStatus(r.Status),
		Message:          r.Message,
		ExitCode:         r.ExitCode,
		StartedAt:        started,
		Duration:         r.DurationSeconds,
		FilesRequested:   r.FilesRequested,
		FilesObserved:    r.FilesObserved,
		FilesMissing:     r.FilesMissing,
		Modules:          r.Modules,
		Messages:         r.Messages,
		Duplicates:       r.Duplicates,
		MalformedRecords: r.MalformedRecords,
		Groups:           r.Groups,
	}
}

// Lode's Hive layout requires records as map[string]any.

func toGroupRecordMap(e *types.GroupEnvelope, cfg Config) map[string]any {
	primary := e.Group.Primary()
	messages := make([]map[string]any, 0, e.Group.Len())
	for _, m := range e.Group.Messages {
		messages = append(messages, map[string]any{
			"file":        m.File,
			"line":        m.Line,
			"type":        string(m.Type),
			"number":      m.Number,
			"description": m.Description,
		})
	}
	return map[string]any{
		"record_kind":    RecordKindGroup,
		"schema_version": types.RecordSchemaVersion,
		"run_id":         e.RunID,
		"seq":            e.Seq,
		"file":           primary.File,
		"line":           primary.Line,
		"type":           string(primary.Type),
		"number":         primary.Number,
		"messages":       messages,
		"policy":         cfg.Policy,
		"tool":           cfg.Tool,
		"day":            cfg.Day,
	}
}

func toRunRecordMap(s *types.RunSummary, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind":       RecordKindRun,
		"schema_version":    types.RecordSchemaVersion,
		"run_id":            s.RunID,
		"batch":             s.Batch,
		"batches":           s.Batches,
		"status":            string(s.Status),
		"exit_code":         s.ExitCode,
		"started_at":        s.StartedAt.UTC().Format(time.RFC3339Nano),
		"duration_seconds":  s.Duration,
		"files_requested":   s.FilesRequested,
		"files_observed":    s.FilesObserved,
		"modules":           s.Modules,
		"messages":          s.Messages,
		"duplicates":        s.Duplicates,
		"malformed_records": s.MalformedRecords,
		"groups":            s.Groups,
		"policy":            cfg.Policy,
		"tool":              cfg.Tool,
		"day":               cfg.Day,
	}
	if s.ParentRunID != nil {
		m["parent_run_id"] = *s.ParentRunID
	}
	if s.Message != "" {
		m["message"] = s.Message
	}
	if len(s.FilesMissing) > 0 {
		m["files_missing"] = append([]string(nil), s.FilesMissing...)
	}
	return m
}

func toMetricsRecordMap(snap metrics.Snapshot, completedAt time.Time, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind":        RecordKindMetrics,
		"schema_version":     types.RecordSchemaVersion,
		"ts":                 completedAt.UTC().Format(time.RFC3339Nano),
		"runs_started":       snap.RunsStarted,
		"runs_complete":      snap.RunsComplete,
		"runs_partial":       snap.RunsPartial,
		"runs_failed":        snap.RunsFailed,
		"runs_aborted":       snap.RunsAborted,
		"launch_success":     snap.LaunchSuccess,
		"launch_failure":     snap.LaunchFailure,
		"read_errors":        snap.ReadErrors,
		"chunks":             snap.Pipeline.Chunks,
		"bytes":              snap.Pipeline.Bytes,
		"modules":            snap.Pipeline.Modules,
		"malformed_records":  snap.Pipeline.MalformedRecords,
		"messages":           snap.Pipeline.Messages,
		"duplicates":         snap.Pipeline.Duplicates,
		"groups":             snap.Pipeline.Groups,
		"groups_received":    snap.GroupsReceived,
		"groups_persisted":   snap.GroupsPersisted,
		"groups_dropped":     snap.GroupsDropped,
		"lode_write_success": snap.LodeWriteSuccess,
		"lode_write_failure": snap.LodeWriteFailure,
		"storage_backend":    snap.StorageBackend,
		"policy":             cfg.Policy,
		"run_id":             cfg.RunID,
		"tool":               cfg.Tool,
		"day":                cfg.Day,
	}
	if snap.FlushTriggers != nil {
		triggers := make(map[string]int64, len(snap.FlushTriggers))
		for k, v := range snap.FlushTriggers {
			triggers[k] = v
		}
		m["flush_triggers"] = triggers
	}
	return m
}

// decodeRecord converts a record read back from the dataset into a typed
// struct. Records arrive as generic maps whose numbers are float64.
func decodeRecord(item any, out any) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("re-encode record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
