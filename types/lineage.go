package types

import (
	"errors"
	"fmt"
)

// RunMeta identifies one lint tool invocation.
// A file list too long for a single command line is split into batches;
// every batch after the first links back to the first batch's run.
type RunMeta struct {
	// RunID is the canonical run identifier. Must be globally unique.
	RunID string
	// Tool is the logical tool name used for storage partitioning.
	Tool string
	// ParentRunID is the first batch's RunID. Nil for the first batch.
	ParentRunID *string
	// Batch is the 1-based batch index.
	Batch int
	// Batches is the total batch count of the session.
	Batches int
}

// Validate checks the lineage rules:
//   - batch >= 1 and batch <= batches
//   - batch == 1 => parent_run_id must be nil
//   - batch > 1 => parent_run_id must be present
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	if r.Tool == "" {
		return errors.New("tool must be non-empty")
	}

	if r.Batch < 1 {
		return fmt.Errorf("batch must be >= 1, got %d", r.Batch)
	}
	if r.Batches < r.Batch {
		return fmt.Errorf("batch %d exceeds batch count %d", r.Batch, r.Batches)
	}

	if r.Batch == 1 && r.ParentRunID != nil {
		return errors.New("first batch must not have parent_run_id")
	}
	if r.Batch > 1 && r.ParentRunID == nil {
		return fmt.Errorf("batch %d must have parent_run_id", r.Batch)
	}

	return nil
}
