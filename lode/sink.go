// Package lode persists lint results to a Lode dataset.
//
// Groups and run summaries are written as JSONL records under a Hive
// layout partitioned by tool, day, run_id and record_kind. The same layout
// is used by the read path, so a dataset written by `lint` can be queried
// by `inspect` and `stats`.
package lode

import (
	"context"
	"sync"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "lintstream"

// DeriveDay computes the partition day from run start time (YYYY-MM-DD, UTC).
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds the partition values for one run.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Tool is the logical tool name partition key.
	Tool string
	// Day is derived from the run start time.
	Day string
	// RunID is the run partition key.
	RunID string
	// Policy is the persistence policy name, recorded on every record.
	Policy string
}

// Client abstracts the Lode storage client.
type Client interface {
	// WriteGroups writes a batch of groups. Order within the batch is kept.
	WriteGroups(ctx context.Context, dataset, runID string, groups []*types.GroupEnvelope) error
	// WriteRun writes one run summary.
	WriteRun(ctx context.Context, dataset string, summary *types.RunSummary) error
	// Close releases client resources.
	Close() error
}

// Sink is a Lode-backed policy.Sink.
type Sink struct {
	config Config
	client Client
}

// NewSink creates a new Lode sink.
func NewSink(config Config, client Client) *Sink {
	return &Sink{config: config, client: client}
}

// WriteGroups implements policy.Sink.
func (s *Sink) WriteGroups(ctx context.Context, groups []*types.GroupEnvelope) error {
	return s.client.WriteGroups(ctx, s.config.Dataset, s.config.RunID, groups)
}

// WriteRun implements policy.Sink.
func (s *Sink) WriteRun(ctx context.Context, summary *types.RunSummary) error {
	return s.client.WriteRun(ctx, s.config.Dataset, summary)
}

// Close implements policy.Sink.
func (s *Sink) Close() error {
	return s.client.Close()
}

var _ policy.Sink = (*Sink)(nil)

// StubClient records writes without persisting.
type StubClient struct {
	mu     sync.Mutex
	Groups []StubGroupWrite
	Runs   []*types.RunSummary
	Closed bool
}

// StubGroupWrite is one recorded WriteGroups call.
type StubGroupWrite struct {
	Dataset string
	RunID   string
	Groups  []*types.GroupEnvelope
}

// NewStubClient creates a new stub client.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// WriteGroups implements Client.
func (c *StubClient) WriteGroups(_ context.Context, dataset, runID string, groups []*types.GroupEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Groups = append(c.Groups, StubGroupWrite{Dataset: dataset, RunID: runID, Groups: groups})
	return nil
}

// WriteRun implements Client.
func (c *StubClient) WriteRun(_ context.Context, _ string, summary *types.RunSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Runs = append(c.Runs, summary)
	return nil
}

// Close implements Client.
func (c *StubClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

var _ Client = (*StubClient)(nil)
