package reader

import (
	"strings"
	"testing"
)

func TestParseMetricsRecord_Int64Fields(t *testing.T) {
	record := map[string]any{
		"ts":                 "2026-03-01T09:00:01Z",
		"run_id":             "run-001",
		"tool":               "pclp",
		"policy":             "streaming",
		"storage_backend":    "fs",
		"runs_complete":      int64(1),
		"messages":           int64(22),
		"groups":             int64(13),
		"lode_write_success": int64(4),
		"flush_triggers":     map[string]int64{"count": 2, "termination": 1},
	}

	snap, err := ParseMetricsRecord(record)
	if err != nil {
		t.Fatalf("ParseMetricsRecord: %v", err)
	}
	if snap.RunsComplete != 1 || snap.Messages != 22 || snap.Groups != 13 || snap.LodeWriteSuccess != 4 {
		t.Errorf("snap = %+v", snap)
	}
	if snap.FlushTriggers["termination"] != 1 {
		t.Errorf("FlushTriggers = %v", snap.FlushTriggers)
	}
}

func TestParseMetricsRecord_Float64Fields(t *testing.T) {
	// JSON round trips turn every number into float64.
	record := map[string]any{
		"ts":             "2026-03-01T09:00:01Z",
		"run_id":         "run-001",
		"chunks":         float64(12),
		"bytes":          float64(4096),
		"flush_triggers": map[string]any{"interval": float64(7)},
	}

	snap, err := ParseMetricsRecord(record)
	if err != nil {
		t.Fatalf("ParseMetricsRecord: %v", err)
	}
	if snap.Chunks != 12 || snap.Bytes != 4096 {
		t.Errorf("chunks/bytes = %d/%d", snap.Chunks, snap.Bytes)
	}
	if snap.FlushTriggers["interval"] != 7 {
		t.Errorf("FlushTriggers = %v", snap.FlushTriggers)
	}
}

func TestParseMetricsRecord_Errors(t *testing.T) {
	tests := []struct {
		name    string
		record  map[string]any
		wantErr string
	}{
		{"nil", nil, "nil record"},
		{"missing ts", map[string]any{"run_id": "run-001"}, "ts"},
		{"missing run_id", map[string]any{"ts": "2026-03-01T09:00:01Z"}, "run_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetricsRecord(tt.record)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseMetricsRecord_WrongTypesAreZero(t *testing.T) {
	snap, err := ParseMetricsRecord(map[string]any{
		"ts":       "2026-03-01T09:00:01Z",
		"run_id":   "run-001",
		"messages": "many",
		"policy":   42,
	})
	if err != nil {
		t.Fatalf("ParseMetricsRecord: %v", err)
	}
	if snap.Messages != 0 || snap.Policy != "" {
		t.Errorf("snap = %+v", snap)
	}
}
