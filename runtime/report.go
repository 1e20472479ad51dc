package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// RunReport is the structured JSON report written by --report.
type RunReport struct {
	RunID       string          `json:"run_id"`
	ParentRunID string          `json:"parent_run_id,omitempty"`
	Batch       int             `json:"batch"`
	Batches     int             `json:"batches"`
	Status      types.RunStatus `json:"status"`
	Message     string          `json:"message,omitempty"`
	ExitCode    int             `json:"exit_code"`
	ToolExit    int             `json:"tool_exit_code"`
	DurationMs  int64           `json:"duration_ms"`

	Files    *ReportFiles      `json:"files"`
	Pipeline *ReportPipeline   `json:"pipeline"`
	Policy   *ReportPolicy     `json:"policy"`
	Metrics  *metrics.Snapshot `json:"metrics"`
}

// ReportFiles holds file coverage in the report.
type ReportFiles struct {
	Requested int      `json:"requested"`
	Observed  int      `json:"observed"`
	Missing   []string `json:"missing,omitempty"`
}

// ReportPipeline holds pipeline counters in the report.
type ReportPipeline struct {
	Chunks           int64 `json:"chunks"`
	Bytes            int64 `json:"bytes"`
	Modules          int64 `json:"modules"`
	MalformedRecords int64 `json:"malformed_records"`
	Messages         int64 `json:"messages"`
	Duplicates       int64 `json:"duplicates"`
	Groups           int64 `json:"groups"`
}

// ReportPolicy holds policy stats in the report.
type ReportPolicy struct {
	Name            string           `json:"name"`
	GroupsReceived  int64            `json:"groups_received"`
	GroupsPersisted int64            `json:"groups_persisted"`
	GroupsDropped   int64            `json:"groups_dropped"`
	Errors          int64            `json:"errors"`
	FlushTriggers   map[string]int64 `json:"flush_triggers,omitempty"`
}

// BuildRunReport composes a RunReport from a RunResult and metrics snapshot.
// exitCode is the code the CLI will return.
func BuildRunReport(result *RunResult, snap metrics.Snapshot, policyName string, exitCode int) *RunReport {
	report := &RunReport{
		RunID:      result.RunMeta.RunID,
		Batch:      result.RunMeta.Batch,
		Batches:    result.RunMeta.Batches,
		Status:     result.Status,
		Message:    result.Message,
		ExitCode:   exitCode,
		ToolExit:   result.ExitCode,
		DurationMs: result.Duration.Milliseconds(),
		Files: &ReportFiles{
			Requested: result.FilesRequested,
			Observed:  result.FilesObserved,
			Missing:   result.FilesMissing,
		},
		Pipeline: &ReportPipeline{
			Chunks:           result.Pipeline.Chunks,
			Bytes:            result.Pipeline.Bytes,
			Modules:          result.Pipeline.Modules,
			MalformedRecords: result.Pipeline.MalformedRecords,
			Messages:         result.Pipeline.Messages,
			Duplicates:       result.Pipeline.Duplicates,
			Groups:           result.Pipeline.Groups,
		},
		Policy: &ReportPolicy{
			Name:            policyName,
			GroupsReceived:  result.PolicyStats.TotalGroups,
			GroupsPersisted: result.PolicyStats.GroupsPersisted,
			GroupsDropped:   result.PolicyStats.GroupsDropped,
			Errors:          result.PolicyErrors,
			FlushTriggers:   snap.FlushTriggers,
		},
		Metrics: &snap,
	}

	if result.RunMeta.ParentRunID != nil {
		report.ParentRunID = *result.RunMeta.ParentRunID
	}

	return report
}

// WriteRunReport writes the report as JSON to the specified path.
// If path is "-", writes to stderr.
func WriteRunReport(report *RunReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	if path == "-" {
		if err := writeRunReportTo(report, os.Stderr); err != nil {
			return fmt.Errorf("failed to write report to stderr: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	if err := writeRunReportTo(report, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return f.Close()
}

// writeRunReportTo writes report JSON to any writer.
func writeRunReportTo(report *RunReport, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
