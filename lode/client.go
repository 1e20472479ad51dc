package lode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// LodeClient writes records to a Lode dataset.
type LodeClient struct {
	dataset      lode.Dataset
	config       Config
	storeFactory lode.StoreFactory

	// Lazily created store for sidecar files.
	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

// NewLodeClient creates a client with filesystem storage rooted at root.
func NewLodeClient(cfg Config, root string) (*LodeClient, error) {
	return NewLodeClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewLodeClientWithFactory creates a client with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewLodeClientWithFactory(cfg Config, factory lode.StoreFactory) (*LodeClient, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	ds, err := newDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return newClient(ds, cfg, factory), nil
}

func newClient(ds lode.Dataset, cfg Config, factory lode.StoreFactory) *LodeClient {
	return &LodeClient{dataset: ds, config: cfg, storeFactory: factory}
}

func newDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(PartitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// WriteGroups writes a batch of groups as one snapshot.
// Every group must belong to runID.
func (c *LodeClient) WriteGroups(ctx context.Context, dataset, runID string, groups []*types.GroupEnvelope) error {
	if len(groups) == 0 {
		return nil
	}

	records := make([]any, 0, len(groups))
	for _, g := range groups {
		if g.RunID != runID {
			return fmt.Errorf("group seq %d belongs to run %q, not %q", g.Seq, g.RunID, runID)
		}
		records = append(records, toGroupRecordMap(g, c.config))
	}

	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(RecordKindGroup))
	}
	return nil
}

// WriteRun writes one run record.
func (c *LodeClient) WriteRun(ctx context.Context, dataset string, summary *types.RunSummary) error {
	records := []any{toRunRecordMap(summary, c.config)}
	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(RecordKindRun))
	}
	return nil
}

// WriteMetrics writes the run's metrics snapshot as a metrics record.
func (c *LodeClient) WriteMetrics(ctx context.Context, snap metrics.Snapshot, completedAt time.Time) error {
	records := []any{toMetricsRecordMap(snap, completedAt, c.config)}
	if _, err := c.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.partitionPath(RecordKindMetrics))
	}
	return nil
}

// Close releases client resources. Datasets need no explicit close.
func (c *LodeClient) Close() error {
	return nil
}

func (c *LodeClient) partitionPath(kind string) string {
	return fmt.Sprintf("%s/tool=%s/day=%s/run_id=%s/record_kind=%s",
		c.config.Dataset, c.config.Tool, c.config.Day, c.config.RunID, kind)
}

var _ Client = (*LodeClient)(nil)
