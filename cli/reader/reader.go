package reader

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	lodelibrary "github.com/justapithecus/lode/lode"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/lode"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultTopNumbers is the length of RunStats.TopNumbers.
const DefaultTopNumbers = 10

// Reader is read-only access to stored runs.
type Reader interface {
	InspectRun(ctx context.Context, runID string) (*RunView, error)
	RunGroups(ctx context.Context, runID string) ([]*types.GroupEnvelope, error)
	StatsRun(ctx context.Context, runID string) (*RunStats, error)
	ListRuns(ctx context.Context, opts ListRunsOptions) ([]ListRunItem, error)
	RunMetrics(ctx context.Context, runID string) (*MetricsSnapshot, error)
}

// LodeReader reads a Lode dataset written by the lode sink.
type LodeReader struct {
	ds lodelibrary.Dataset
}

// NewLodeReader wraps an open read dataset.
func NewLodeReader(ds lodelibrary.Dataset) *LodeReader {
	return &LodeReader{ds: ds}
}

var _ Reader = (*LodeReader)(nil)

// InspectRun returns the run record.
func (r *LodeReader) InspectRun(ctx context.Context, runID string) (*RunView, error) {
	s, err := lode.ReadRun(ctx, r.ds, runID)
	if err != nil {
		return nil, err
	}
	return NewRunView(s), nil
}

// RunGroups returns the run's groups in emission order.
func (r *LodeReader) RunGroups(ctx context.Context, runID string) ([]*types.GroupEnvelope, error) {
	return lode.ReadGroups(ctx, r.ds, runID)
}

// StatsRun computes the run's message breakdown from its stored groups.
func (r *LodeReader) StatsRun(ctx context.Context, runID string) (*RunStats, error) {
	s, err := lode.ReadRun(ctx, r.ds, runID)
	if err != nil {
		return nil, err
	}
	groups, err := lode.ReadGroups(ctx, r.ds, runID)
	if err != nil {
		return nil, err
	}
	return ComputeRunStats(s, groups, DefaultTopNumbers), nil
}

// ListRuns lists stored runs, newest first.
func (r *LodeReader) ListRuns(ctx context.Context, opts ListRunsOptions) ([]ListRunItem, error) {
	runs, err := lode.ReadRuns(ctx, r.ds, lode.RunFilter{Tool: opts.Tool, Day: opts.Day})
	if err != nil {
		return nil, err
	}

	items := make([]ListRunItem, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		s := runs[i]
		if opts.Status != "" && string(s.Status) != opts.Status {
			continue
		}
		items = append(items, ListRunItem{
			RunID:     s.RunID,
			Tool:      s.Tool,
			Batch:     fmt.Sprintf("%d/%d", s.Batch, s.Batches),
			Status:    string(s.Status),
			Groups:    s.Groups,
			StartedAt: s.StartedAt,
		})
		if opts.Limit > 0 && len(items) == opts.Limit {
			break
		}
	}
	return items, nil
}

// RunMetrics returns the run's stored metrics record.
func (r *LodeReader) RunMetrics(ctx context.Context, runID string) (*MetricsSnapshot, error) {
	record, err := lode.QueryLatestMetrics(ctx, r.ds, runID, "")
	if err != nil {
		return nil, err
	}
	return ParseMetricsRecord(record)
}

// ComputeRunStats builds the breakdown of a run from its groups.
// topN bounds TopNumbers; zero or less keeps all.
func ComputeRunStats(run *types.RunSummary, groups []*types.GroupEnvelope, topN int) *RunStats {
	byType := map[string]int{}
	byFile := map[string]int{}
	byNumber := map[string]int{}
	messages := 0

	for _, g := range groups {
		p := g.Group.Primary()
		byType[string(p.Type)]++
		byFile[p.File]++
		byNumber[strconv.Itoa(p.Number)]++
		messages += g.Group.Len()
	}

	stats := &RunStats{
		Groups:     len(groups),
		Messages:   messages,
		ByType:     sortedCounts(byType, 0),
		ByFile:     sortedCounts(byFile, 0),
		TopNumbers: sortedCounts(byNumber, topN),
	}
	if run != nil {
		stats.RunID = run.RunID
		stats.Status = string(run.Status)
	}
	return stats
}

// sortedCounts orders buckets by count, then key.
func sortedCounts(m map[string]int, limit int) []CountItem {
	items := make([]CountItem, 0, len(m))
	for k, v := range m {
		items = append(items, CountItem{Key: k, Count: v})
	}
	slices.SortFunc(items, func(a, b CountItem) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
