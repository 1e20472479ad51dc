package lode

import "testing"

func TestNewReadDatasetFS(t *testing.T) {
	ds, err := NewReadDatasetFS("", t.TempDir())
	if err != nil {
		t.Fatalf("NewReadDatasetFS failed: %v", err)
	}
	if ds.ID() != DefaultDataset {
		t.Errorf("Dataset ID = %q, want %q", ds.ID(), DefaultDataset)
	}
}

func TestMatchesPartitionValue(t *testing.T) {
	path := "datasets/lintstream/partitions/tool=pclp/day=2026-03-01/run_id=run-10/record_kind=group/part-0.jsonl"

	tests := []struct {
		key, value string
		want       bool
	}{
		{"run_id", "run-10", true},
		{"run_id", "run-1", false},
		{"record_kind", "group", true},
		{"record_kind", "run", false},
		{"tool", "pclp", true},
	}
	for _, tt := range tests {
		if got := matchesPartitionValue(path, tt.key, tt.value); got != tt.want {
			t.Errorf("matchesPartitionValue(%s=%s) = %v, want %v", tt.key, tt.value, got, tt.want)
		}
	}
}
