package reader

import "errors"

// ParseMetricsRecord converts a stored metrics record to a MetricsSnapshot.
// Numbers arrive as int64 from direct writes and float64 after a JSON
// round trip; both are accepted.
func ParseMetricsRecord(record map[string]any) (*MetricsSnapshot, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}

	snap := &MetricsSnapshot{
		Ts:               toString(record["ts"]),
		RunID:            toString(record["run_id"]),
		Tool:             toString(record["tool"]),
		Policy:           toString(record["policy"]),
		StorageBackend:   toString(record["storage_backend"]),
		RunsComplete:     toInt64(record["runs_complete"]),
		RunsPartial:      toInt64(record["runs_partial"]),
		RunsFailed:       toInt64(record["runs_failed"]),
		RunsAborted:      toInt64(record["runs_aborted"]),
		LaunchFailure:    toInt64(record["launch_failure"]),
		ReadErrors:       toInt64(record["read_errors"]),
		Chunks:           toInt64(record["chunks"]),
		Bytes:            toInt64(record["bytes"]),
		Modules:          toInt64(record["modules"]),
		MalformedRecords: toInt64(record["malformed_records"]),
		Messages:         toInt64(record["messages"]),
		Duplicates:       toInt64(record["duplicates"]),
		Groups:           toInt64(record["groups"]),
		GroupsPersisted:  toInt64(record["groups_persisted"]),
		GroupsDropped:    toInt64(record["groups_dropped"]),
		LodeWriteSuccess: toInt64(record["lode_write_success"]),
		LodeWriteFailure: toInt64(record["lode_write_failure"]),
	}

	if ft, ok := record["flush_triggers"]; ok && ft != nil {
		snap.FlushTriggers = parseCounts(ft)
	}

	// The write path always sets these; their absence means a damaged record.
	if snap.Ts == "" {
		return nil, errors.New("metrics record missing required field: ts")
	}
	if snap.RunID == "" {
		return nil, errors.New("metrics record missing required field: run_id")
	}

	return snap, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func parseCounts(v any) map[string]int64 {
	switch m := v.(type) {
	case map[string]int64:
		return m
	case map[string]any:
		result := make(map[string]int64, len(m))
		for k, val := range m {
			result[k] = toInt64(val)
		}
		return result
	default:
		return nil
	}
}
