package lode

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/justapithecus/lode/lode"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Read-side errors.
var (
	ErrNoMetricsFound = errors.New("no metrics records found")
	ErrRunNotFound    = errors.New("run not found")
)

// RunFilter narrows a run listing. Empty fields match everything.
type RunFilter struct {
	Tool  string
	Day   string
	RunID string
}

// scan reads every snapshot in the partitions selected by filters and
// passes each record of the given kind to fn. Manifest paths are a coarse
// pre-filter; record fields are checked again by the caller.
func scan(ctx context.Context, ds lode.Dataset, kind string, filters map[string]string, newestFirst bool, fn func(record map[string]any) (stop bool, err error)) error {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return WrapReadError(err, string(ds.ID())+"/snapshots")
	}

	order := make([]int, len(snapshots))
	for i := range order {
		order[i] = i
		if newestFirst {
			order[i] = len(snapshots) - 1 - i
		}
	}

	for _, i := range order {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "record_kind", kind) {
			continue
		}
		skip := false
		for k, v := range filters {
			if !snapshotMatchesFilter(snap, k, v) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID))
		}
		for _, item := range data {
			record, ok := item.(map[string]any)
			if !ok || record["record_kind"] != kind {
				continue
			}
			stop, err := fn(record)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
	return nil
}

// ReadGroups returns every stored group of a run, ordered by seq.
// A group stored more than once is returned once.
func ReadGroups(ctx context.Context, ds lode.Dataset, runID string) ([]*types.GroupEnvelope, error) {
	bySeq := make(map[int64]*types.GroupEnvelope)
	err := scan(ctx, ds, RecordKindGroup, map[string]string{"run_id": runID}, false, func(record map[string]any) (bool, error) {
		if toString(record["run_id"]) != runID {
			return false, nil
		}
		var gr GroupRecord
		if err := decodeRecord(record, &gr); err != nil {
			return false, err
		}
		bySeq[gr.Seq] = gr.Envelope()
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	groups := make([]*types.GroupEnvelope, 0, len(bySeq))
	for _, g := range bySeq {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Seq < groups[j].Seq })
	return groups, nil
}

// ReadRuns returns the stored run summaries matching filter, oldest first
// by start time.
func ReadRuns(ctx context.Context, ds lode.Dataset, filter RunFilter) ([]*types.RunSummary, error) {
	byID := make(map[string]*types.RunSummary)
	filters := map[string]string{"tool": filter.Tool, "day": filter.Day, "run_id": filter.RunID}
	err := scan(ctx, ds, RecordKindRun, filters, false, func(record map[string]any) (bool, error) {
		var rr RunRecord
		if err := decodeRecord(record, &rr); err != nil {
			return false, err
		}
		if (filter.Tool != "" && rr.Tool != filter.Tool) ||
			(filter.Day != "" && rr.Day != filter.Day) ||
			(filter.RunID != "" && rr.RunID != filter.RunID) {
			return false, nil
		}
		byID[rr.RunID] = rr.Summary()
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	runs := make([]*types.RunSummary, 0, len(byID))
	for _, r := range byID {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.Before(runs[j].StartedAt)
		}
		return runs[i].RunID < runs[j].RunID
	})
	return runs, nil
}

// ReadRun returns one run summary or ErrRunNotFound.
func ReadRun(ctx context.Context, ds lode.Dataset, runID string) (*types.RunSummary, error) {
	runs, err := ReadRuns(ctx, ds, RunFilter{RunID: runID})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return runs[0], nil
}

// QueryLatestMetrics returns the newest metrics record, optionally filtered
// by run and tool, or ErrNoMetricsFound.
func QueryLatestMetrics(ctx context.Context, ds lode.Dataset, runID, tool string) (map[string]any, error) {
	var found map[string]any
	filters := map[string]string{"run_id": runID, "tool": tool}
	err := scan(ctx, ds, RecordKindMetrics, filters, true, func(record map[string]any) (bool, error) {
		if runID != "" && toString(record["run_id"]) != runID {
			return false, nil
		}
		if tool != "" && toString(record["tool"]) != tool {
			return false, nil
		}
		found = record
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNoMetricsFound
	}
	return found, nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
