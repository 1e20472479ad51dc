package types //nolint:revive // types is a valid package name

import (
	"testing"
)

func TestRunMeta_Validate(t *testing.T) {
	parent := "run-parent-001"

	tests := []struct {
		name    string
		meta    RunMeta
		wantErr bool
	}{
		{
			name:    "empty run_id",
			meta:    RunMeta{RunID: "", Tool: "pclp", Batch: 1, Batches: 1},
			wantErr: true,
		},
		{
			name:    "empty tool",
			meta:    RunMeta{RunID: "run-001", Batch: 1, Batches: 1},
			wantErr: true,
		},
		{
			name:    "batch zero",
			meta:    RunMeta{RunID: "run-001", Tool: "pclp", Batch: 0, Batches: 1},
			wantErr: true,
		},
		{
			name:    "batch beyond count",
			meta:    RunMeta{RunID: "run-001", Tool: "pclp", Batch: 3, Batches: 2, ParentRunID: &parent},
			wantErr: true,
		},
		{
			name:    "first batch with parent_run_id",
			meta:    RunMeta{RunID: "run-001", Tool: "pclp", Batch: 1, Batches: 2, ParentRunID: &parent},
			wantErr: true,
		},
		{
			name:    "later batch without parent_run_id",
			meta:    RunMeta{RunID: "run-001", Tool: "pclp", Batch: 2, Batches: 2},
			wantErr: true,
		},
		{
			name:    "valid single run",
			meta:    RunMeta{RunID: "run-001", Tool: "pclp", Batch: 1, Batches: 1},
			wantErr: false,
		},
		{
			name:    "valid later batch",
			meta:    RunMeta{RunID: "run-002", Tool: "pclp", Batch: 2, Batches: 2, ParentRunID: &parent},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
