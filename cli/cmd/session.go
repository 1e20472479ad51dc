package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/adapter"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/dump"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/lode"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/pipeline"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// finalizeTimeout bounds the metrics write and event publish after a run.
const finalizeTimeout = 30 * time.Second

// lintOptions is the resolved lint configuration: flags over config file.
type lintOptions struct {
	tool           string
	toolPath       string
	optionsFile    string
	workDir        string
	args           []string
	env            []string
	timeout        time.Duration
	launchTimeout  time.Duration
	maxCommandLine int
	banner         runtime.BannerConfig

	policy        string
	flushCount    int
	flushInterval time.Duration

	dumpPath   string
	reportPath string
	logLevel   string
}

// lintSession runs file lists through the tool and wires every batch to
// its own storage client, policy, metrics collector, dump and report.
// One session value serves every watch re-run and shares one pipeline.
type lintSession struct {
	opts      lintOptions
	storage   storageChoice
	publisher adapter.Adapter
	observer  runtime.Observer
	pipe      *pipeline.Pipeline
	logger    *log.Logger
	// out receives the per-run summary. Nil keeps quiet.
	out io.Writer

	// Overridable for tests.
	factory  runtime.ProcessFactory
	newRunID func() string
	now      func() time.Time
}

// batchState holds the per-run resources opened by openBatch.
type batchState struct {
	collector *metrics.Collector
	client    *lode.LodeClient
	policy    policy.Policy
	dump      *dump.Writer
	logger    *log.Logger
}

func newLintSession(opts lintOptions, storage storageChoice, publisher adapter.Adapter, observer runtime.Observer, logger *log.Logger) *lintSession {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &lintSession{
		opts:      opts,
		storage:   storage,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
		pipe:      pipeline.New(pipeline.Config{Logger: logger.With("pipeline")}),
		now:       time.Now,
	}
}

// run executes one session over files.
func (s *lintSession) run(ctx context.Context, files []string) (*runtime.SessionResult, error) {
	var current *batchState

	cfg := runtime.SessionConfig{
		Run: runtime.RunConfig{
			ToolPath:       s.opts.toolPath,
			OptionsFile:    s.opts.optionsFile,
			ExtraArgs:      s.opts.args,
			WorkDir:        s.opts.workDir,
			Env:            s.opts.env,
			LaunchTimeout:  s.opts.launchTimeout,
			Timeout:        s.opts.timeout,
			Banner:         s.opts.banner,
			Observer:       s.observer,
			Pipeline:       s.pipe,
			ProcessFactory: s.factory,
		},
		Files:          files,
		Tool:           s.opts.tool,
		MaxCommandLine: s.opts.maxCommandLine,
		NewRunID:       s.newRunID,
		BeforeRun: func(run *runtime.RunConfig) error {
			b, err := s.openBatch(ctx, run)
			if err != nil {
				return err
			}
			current = b
			return nil
		},
		AfterRun: func(run *runtime.RunConfig, result *runtime.RunResult) {
			s.closeBatch(ctx, current, run.RunMeta, result)
			current = nil
		},
	}

	res, err := runtime.RunSession(ctx, cfg)
	// A batch whose supervisor was never created gets no AfterRun.
	if current != nil {
		s.closeBatch(ctx, current, nil, nil)
	}
	return res, err
}

func (s *lintSession) policyName() string {
	if !s.storage.enabled() {
		return "noop"
	}
	if s.opts.policy == "" {
		return "strict"
	}
	return s.opts.policy
}

func (s *lintSession) backendName() string {
	if !s.storage.enabled() {
		return "none"
	}
	return s.storage.backend
}

// openBatch attaches per-run resources to run.
func (s *lintSession) openBatch(ctx context.Context, run *runtime.RunConfig) (*batchState, error) {
	meta := run.RunMeta
	b := &batchState{
		collector: metrics.NewCollector(s.policyName(), s.backendName(), meta.RunID, meta.Tool),
	}
	b.logger = log.NewLoggerWithLevel(meta, s.opts.logLevel)
	run.Collector = b.collector
	run.Logger = b.logger

	if s.storage.enabled() {
		client, pol, err := s.buildPolicy(ctx, meta, b.collector, run.Logger)
		if err != nil {
			return nil, err
		}
		b.client = client
		b.policy = pol
		run.Policy = pol
	}

	if s.opts.dumpPath != "" {
		w, err := s.openDump(run)
		if err != nil {
			if b.policy != nil {
				_ = b.policy.Close()
			}
			return nil, err
		}
		b.dump = w
		run.ChunkTap = w.WriteChunk
	}

	return b, nil
}

// buildPolicy creates the run's Lode client and the policy writing through it.
func (s *lintSession) buildPolicy(ctx context.Context, meta *types.RunMeta, collector *metrics.Collector, logger *log.Logger) (*lode.LodeClient, policy.Policy, error) {
	cfg := lode.Config{
		Dataset: s.storage.dataset,
		Tool:    meta.Tool,
		Day:     lode.DeriveDay(s.now()),
		RunID:   meta.RunID,
		Policy:  s.policyName(),
	}

	var (
		client *lode.LodeClient
		err    error
	)
	switch s.storage.backend {
	case "fs":
		if err := os.MkdirAll(s.storage.path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		client, err = lode.NewLodeClient(cfg, s.storage.path)
	case "s3":
		client, err = lode.NewLodeS3Client(ctx, cfg, s.storage.s3Config())
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", s.storage.backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Lode client: %w", err)
	}

	sink := lode.NewInstrumentedSink(lode.NewSink(cfg, client), collector)

	switch s.policyName() {
	case "strict":
		return client, policy.NewStrictPolicy(sink), nil
	case "streaming":
		pol, err := policy.NewStreamingPolicy(sink, policy.StreamingConfig{
			FlushCount:    s.opts.flushCount,
			FlushInterval: s.opts.flushInterval,
			Logger:        logger.With("policy"),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, pol, nil
	default:
		return nil, nil, fmt.Errorf("unknown policy: %s (must be strict or streaming)", s.opts.policy)
	}
}

func (s *lintSession) openDump(run *runtime.RunConfig) (*dump.Writer, error) {
	meta := run.RunMeta
	path := batchPath(s.opts.dumpPath, meta)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dump: %w", err)
	}
	w, err := dump.NewWriter(f, dump.Header{
		RunID:    meta.RunID,
		Tool:     meta.Tool,
		ToolPath: run.ToolPath,
		Args:     runtime.BuildArgs(run.ExtraArgs, run.OptionsFile, run.Files),
		Files:    run.Files,
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write dump header: %w", err)
	}
	return w, nil
}

// closeBatch releases the run's resources and reports the result.
// A nil result means the tool never launched: nothing is recorded.
func (s *lintSession) closeBatch(ctx context.Context, b *batchState, meta *types.RunMeta, result *runtime.RunResult) {
	if b == nil {
		return
	}
	logger := b.logger

	exitCode := -1
	if result != nil {
		exitCode = result.ExitCode
	}
	if b.dump != nil {
		if err := b.dump.Close(exitCode); err != nil {
			logger.Warn("dump not completed", map[string]any{"error": err.Error()})
		}
		if n := b.dump.Dropped(); n > 0 {
			logger.Warn("dump dropped chunks", map[string]any{"dropped": n})
		}
	}
	if b.policy != nil {
		if err := b.policy.Close(); err != nil {
			logger.Warn("policy close failed", map[string]any{"error": err.Error()})
		}
	}
	if result == nil {
		return
	}

	finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if b.client != nil {
		if err := b.client.WriteMetrics(finalCtx, b.collector.Snapshot(), s.now()); err != nil {
			logger.Warn("metrics not persisted (best effort)", map[string]any{"error": err.Error()})
		}
	}

	if s.opts.reportPath != "" {
		report := runtime.BuildRunReport(result, b.collector.Snapshot(), s.policyName(), runtime.ExitCodeForStatus(result.Status))
		if err := runtime.WriteRunReport(report, batchPath(s.opts.reportPath, meta)); err != nil {
			logger.Warn("run report not written", map[string]any{"error": err.Error()})
		}
	}

	if s.publisher != nil {
		event := adapter.NewLintCompletedEvent(result.Summary(), s.storage.location(), s.now())
		if err := s.publisher.Publish(finalCtx, event); err != nil {
			logger.Warn("completion event not published", map[string]any{"error": err.Error()})
		}
	}

	if s.out != nil {
		printRunResult(s.out, result, s.policyName())
	}
}

// batchPath gives every batch of a split session its own file:
// lint.dump becomes lint.2.dump for batch 2. "-" is kept as is.
func batchPath(path string, meta *types.RunMeta) string {
	if path == "-" || meta.Batches <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s.%d%s", strings.TrimSuffix(path, ext), meta.Batch, ext)
}

func printRunResult(w io.Writer, result *runtime.RunResult, policyName string) {
	meta := result.RunMeta
	fmt.Fprintf(w, "\nrun_id=%s, batch=%d/%d, status=%s, duration=%s\n",
		meta.RunID, meta.Batch, meta.Batches, result.Status, result.Duration.Round(time.Millisecond))
	if meta.ParentRunID != nil {
		fmt.Fprintf(w, "parent_run_id=%s\n", *meta.ParentRunID)
	}
	if result.Message != "" {
		fmt.Fprintf(w, "message=%s\n", result.Message)
	}
	fmt.Fprintf(w, "files=%d/%d, messages=%d, duplicates=%d, groups=%d, malformed=%d\n",
		result.FilesObserved, result.FilesRequested,
		result.Pipeline.Messages, result.Pipeline.Duplicates,
		result.Pipeline.Groups, result.Pipeline.MalformedRecords)
	fmt.Fprintf(w, "policy=%s, persisted=%d, dropped=%d, errors=%d\n",
		policyName, result.PolicyStats.GroupsPersisted, result.PolicyStats.GroupsDropped, result.PolicyErrors)
	for _, f := range result.FilesMissing {
		fmt.Fprintf(w, "  missing: %s\n", f)
	}
}
