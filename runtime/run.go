package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/iox"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/metrics"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/pipeline"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/policy"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultTimeout is the wall-clock ceiling for one tool invocation.
const DefaultTimeout = 10 * time.Minute

// readChunkSize is the read size for both output channels.
const readChunkSize = 4096

// persistTimeout bounds the final policy write after the tool exits.
const persistTimeout = 30 * time.Second

// Channel names passed to a ChunkTap.
const (
	ChannelDiagnostic = "stdout"
	ChannelProgress   = "stderr"
)

// DefaultToolArgs is the fixed argument prefix: verbose module markers,
// no line wrapping, and one pseudo-XML record per message inside a
// <doc> document pair.
var DefaultToolArgs = []string{
	"+vm",
	"-width(0,0)",
	"+xml(doc)",
	`-format=<m><f>%f</f><l>%l</l><t>%t</t><n>%n</n><d>%m</d></m>\n`,
}

// BuildArgs appends extra arguments, the options file and the file list
// to DefaultToolArgs.
func BuildArgs(extra []string, optionsFile string, files []string) []string {
	args := make([]string, 0, len(DefaultToolArgs)+len(extra)+1+len(files))
	args = append(args, DefaultToolArgs...)
	args = append(args, extra...)
	if optionsFile != "" {
		args = append(args, optionsFile)
	}
	return append(args, files...)
}

// ChunkTap observes every raw read before it is processed.
// The chunk is only valid for the duration of the call.
type ChunkTap func(channel string, chunk []byte)

// RunConfig configures a single tool invocation.
type RunConfig struct {
	// ToolPath is the lint executable.
	ToolPath string
	// OptionsFile is the lint options file passed before the file list.
	OptionsFile string
	// Files is the requested source file list.
	Files []string
	// ExtraArgs are inserted between the fixed prefix and the options file.
	ExtraArgs []string
	// WorkDir is the tool's working directory.
	WorkDir string
	// Env holds extra KEY=VALUE entries for the tool.
	Env []string
	// LaunchTimeout bounds the spawn. Zero selects DefaultLaunchTimeout.
	LaunchTimeout time.Duration
	// Timeout is the wall-clock ceiling. Zero selects DefaultTimeout;
	// negative disables it.
	Timeout time.Duration
	// Banner configures banner classification literals.
	Banner BannerConfig
	// RunMeta is the run identity and lineage metadata.
	RunMeta *types.RunMeta
	// Policy persists emitted groups. Nil discards them.
	Policy policy.Policy
	// Observer receives groups, progress and the final result. Optional.
	Observer Observer
	// Pipeline is reused across runs when set; it must be Idle or Finished.
	// Nil creates a fresh pipeline.
	Pipeline *pipeline.Pipeline
	// PathCacheSize sizes a fresh pipeline's path memo.
	PathCacheSize int
	// MaxQueuedBytes caps a fresh pipeline's backlog. Zero selects
	// pipeline.DefaultMaxQueuedBytes.
	MaxQueuedBytes int64
	// ProcessFactory overrides process creation (for testing).
	// If nil, uses NewLintProcess.
	ProcessFactory ProcessFactory
	// ChunkTap observes raw reads (for dumps). Optional.
	ChunkTap ChunkTap
	// Collector records run metrics. Nil disables metrics.
	Collector *metrics.Collector
	// Logger overrides the run logger.
	Logger *log.Logger
}

// RunResult represents the result of a run.
type RunResult struct {
	// RunMeta is the run identity and lineage.
	RunMeta *types.RunMeta
	// Status is the final run status.
	Status types.RunStatus
	// Message is the failure payload; for banner rejections, the raw banner line.
	Message string
	// ExitCode is the tool's exit code, -1 if it was killed or never reaped.
	ExitCode int
	// StartedAt is when Execute began.
	StartedAt time.Time
	// Duration is the total run duration.
	Duration time.Duration
	// FilesRequested is the number of distinct requested files.
	FilesRequested int
	// FilesObserved is the number of distinct files reported by the tool.
	FilesObserved int
	// FilesMissing lists requested files the tool never reported.
	FilesMissing []string
	// Pipeline is the final pipeline counters.
	Pipeline pipeline.Stats
	// PolicyStats is the policy statistics.
	PolicyStats policy.Stats
	// PolicyErrors counts group and run writes that failed.
	PolicyErrors int64
}

// Summary converts the result into its persisted run record.
func (r *RunResult) Summary() *types.RunSummary {
	return &types.RunSummary{
		RunID:            r.RunMeta.RunID,
		ParentRunID:      r.RunMeta.ParentRunID,
		Tool:             r.RunMeta.Tool,
		Batch:            r.RunMeta.Batch,
		Batches:          r.RunMeta.Batches,
		Status:           r.Status,
		Message:          r.Message,
		ExitCode:         r.ExitCode,
		StartedAt:        r.StartedAt.UTC(),
		Duration:         r.Duration.Seconds(),
		FilesRequested:   r.FilesRequested,
		FilesObserved:    r.FilesObserved,
		FilesMissing:     r.FilesMissing,
		Modules:          r.Pipeline.Modules,
		Messages:         r.Pipeline.Messages,
		Duplicates:       r.Pipeline.Duplicates,
		MalformedRecords: r.Pipeline.MalformedRecords,
		Groups:           r.Pipeline.Groups,
	}
}

// Supervisor owns one tool invocation: the process, its two output
// channels, the pipeline consuming the diagnostic channel, and the status.
type Supervisor struct {
	config   *RunConfig
	logger   *log.Logger
	pipe     *pipeline.Pipeline
	status   *statusTracker
	banner   *BannerClassifier
	progress *ProgressTracker

	// mu guards proc and the flags below.
	mu             sync.Mutex
	proc           Process
	killed         bool
	bannerAccepted bool
	bannerRejected bool

	persistCtx   context.Context
	seq          int64 // consumer-owned
	policyErrors atomic.Int64
	startTime    time.Time
}

// NewSupervisor creates a supervisor for one run.
// Returns error if run metadata is invalid or a reused pipeline is busy.
func NewSupervisor(config *RunConfig) (*Supervisor, error) {
	if config.RunMeta == nil {
		return nil, errors.New("run metadata is required")
	}
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if config.ToolPath == "" {
		return nil, errors.New("tool path is required")
	}

	if config.Policy == nil {
		config.Policy = policy.NewNoopPolicy()
	}
	if config.Observer == nil {
		config.Observer = NopObserver
	}
	if config.ProcessFactory == nil {
		config.ProcessFactory = NewLintProcess
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}

	s := &Supervisor{
		config:     config,
		logger:     logger,
		status:     newStatusTracker(),
		banner:     NewBannerClassifier(config.Banner),
		progress:   NewProgressTracker(config.Files, config.WorkDir),
		persistCtx: context.Background(),
	}

	if config.Pipeline != nil {
		if err := config.Pipeline.Reset(); err != nil {
			return nil, fmt.Errorf("reuse pipeline: %w", err)
		}
		if err := config.Pipeline.SetOnGroup(s.onGroup); err != nil {
			return nil, fmt.Errorf("reuse pipeline: %w", err)
		}
		s.pipe = config.Pipeline
	} else {
		s.pipe = pipeline.New(pipeline.Config{
			OnGroup:        s.onGroup,
			PathCacheSize:  config.PathCacheSize,
			MaxQueuedBytes: config.MaxQueuedBytes,
			Logger:         logger.With("pipeline"),
		})
	}

	return s, nil
}

// Execute runs the tool end-to-end and blocks until the pipeline has
// drained and the run has been recorded.
//
// Execution flow:
//  1. Launch the tool (a failure returns a *LaunchError and no result)
//  2. Read both channels concurrently; the progress channel's banner
//     decides whether the pipeline starts or is discarded
//  3. Reap the process once both channels hit EOF
//  4. Drain the pipeline, finalize the status, record the run
//
// Cancelling ctx is equivalent to calling Abort.
func (s *Supervisor) Execute(ctx context.Context) (*RunResult, error) {
	s.startTime = time.Now()
	s.persistCtx = context.WithoutCancel(ctx)
	s.config.Collector.IncRunStarted()

	if s.wasKilled() {
		s.logger.Info("run aborted before launch", nil)
		return s.complete(-1), nil
	}

	args := BuildArgs(s.config.ExtraArgs, s.config.OptionsFile, s.config.Files)
	s.logger.Info("starting lint run", map[string]any{
		"tool":    s.config.ToolPath,
		"files":   len(s.config.Files),
		"workdir": s.config.WorkDir,
	})

	proc := s.config.ProcessFactory(&ProcessConfig{
		ToolPath:      s.config.ToolPath,
		Args:          args,
		WorkDir:       s.config.WorkDir,
		Env:           s.config.Env,
		LaunchTimeout: s.config.LaunchTimeout,
	})

	if err := proc.Start(ctx); err != nil {
		s.config.Collector.IncLaunchFailure()
		s.config.Collector.IncRunFailed()
		s.logger.Error("failed to launch tool", map[string]any{
			"error": err.Error(),
		})
		s.pipe.Discard()
		if !IsLaunchError(err) {
			err = &LaunchError{Path: s.config.ToolPath, Err: err}
		}
		return nil, err
	}
	s.config.Collector.IncLaunchSuccess()

	s.mu.Lock()
	s.proc = proc
	killed := s.killed
	s.mu.Unlock()
	if killed {
		_ = proc.Kill()
	}

	var timer *time.Timer
	if s.config.Timeout > 0 {
		timer = time.AfterFunc(s.config.Timeout, s.onTimeout)
	}
	stopAbort := context.AfterFunc(ctx, s.Abort)
	defer stopAbort()

	// Both channels must reach EOF before Wait: exec.Cmd.Wait closes the
	// pipes and would truncate data still buffered in them.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readProgress(proc.Stderr())
	}()
	go func() {
		defer wg.Done()
		s.readDiagnostics(proc.Stdout())
	}()
	wg.Wait()

	exitCode := -1
	procResult, waitErr := proc.Wait()
	if timer != nil {
		timer.Stop()
	}
	if waitErr != nil {
		if !s.wasKilled() && s.status.set(types.RunStatusProcessError, fmt.Sprintf("process wait failed: %v", waitErr)) {
			s.logger.Error("process wait failed", map[string]any{
				"error": waitErr.Error(),
			})
		}
	} else {
		exitCode = procResult.ExitCode
	}

	s.settlePipeline()

	return s.complete(exitCode), nil
}

// Abort kills the tool, stops the pipeline and blocks until the consumer
// has drained every chunk already queued. The status becomes Aborted
// unless a terminal status was already set. Safe to call from any goroutine.
func (s *Supervisor) Abort() {
	if s.status.set(types.RunStatusAborted, "run aborted") {
		s.logger.Warn("aborting run", nil)
	}
	s.killProcess()

	s.mu.Lock()
	rejected := s.bannerRejected
	s.mu.Unlock()
	if rejected {
		s.pipe.Discard()
		return
	}
	s.pipe.Abort()
}

// Status returns the current status and failure message.
func (s *Supervisor) Status() (types.RunStatus, string) {
	return s.status.get()
}

// PipelineStats returns the live pipeline counters.
func (s *Supervisor) PipelineStats() pipeline.Stats {
	return s.pipe.Stats()
}

func (s *Supervisor) onTimeout() {
	if !s.status.set(types.RunStatusProcessTimeout, fmt.Sprintf("tool did not exit within %s", s.config.Timeout)) {
		return
	}
	s.logger.Warn("wall-clock ceiling reached, killing tool", map[string]any{
		"timeout": s.config.Timeout.String(),
	})
	s.killProcess()
}

func (s *Supervisor) killProcess() {
	s.mu.Lock()
	s.killed = true
	proc := s.proc
	s.mu.Unlock()
	if proc != nil {
		_ = proc.Kill()
	}
}

func (s *Supervisor) wasKilled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}

// readProgress owns the banner classifier and the progress tracker.
func (s *Supervisor) readProgress(r io.Reader) {
	err := iox.ReadChunks(r, readChunkSize, func(chunk []byte) {
		s.tap(ChannelProgress, chunk)

		switch s.banner.Verdict() {
		case BannerAccepted:
			s.tick(s.progress.Feed(chunk))
			return
		case BannerLicenseError, BannerUnsupported:
			return
		}

		verdict, rest := s.banner.Feed(chunk)
		s.settleBanner(verdict)
		if verdict == BannerAccepted {
			s.tick(s.progress.Feed(rest))
		}
	})
	if err != nil {
		s.readFailed(ChannelProgress, err)
		return
	}

	if s.banner.Verdict() == BannerPending {
		s.settleBanner(s.banner.Close())
	}
	if s.banner.Verdict() == BannerAccepted {
		s.tick(s.progress.Close())
	}
}

func (s *Supervisor) settleBanner(verdict BannerVerdict) {
	switch verdict {
	case BannerPending:
		return

	case BannerAccepted:
		s.logger.Debug("banner accepted", map[string]any{
			"banner": s.banner.Line(),
		})
		s.mu.Lock()
		s.bannerAccepted = true
		s.mu.Unlock()
		if err := s.pipe.Start(); err != nil {
			s.logger.Debug("pipeline already stopped", map[string]any{
				"error": err.Error(),
			})
		}

	default:
		line := s.banner.Line()
		if line == "" {
			line = "tool produced no banner"
		}
		if s.status.set(verdict.Status(), line) {
			s.logger.Error("tool rejected the run", map[string]any{
				"status": string(verdict.Status()),
				"banner": line,
			})
		}
		s.mu.Lock()
		s.bannerRejected = true
		s.mu.Unlock()
		s.killProcess()
		s.pipe.Discard()
	}
}

func (s *Supervisor) readDiagnostics(r io.Reader) {
	err := iox.ReadChunks(r, readChunkSize, func(chunk []byte) {
		s.tap(ChannelDiagnostic, chunk)
		if !s.pipe.Enqueue(bytes.Clone(chunk)) && s.pipe.Overflowed() {
			s.backlogExceeded()
		}
	})
	if err != nil {
		s.readFailed(ChannelDiagnostic, err)
	}
}

// backlogExceeded fails the run when diagnostics pile up faster than the
// consumer takes them, typically while the banner is still pending.
func (s *Supervisor) backlogExceeded() {
	if s.status.set(types.RunStatusProcessError, "diagnostic backlog exceeded the queue limit") {
		s.logger.Error("diagnostic backlog exceeded, killing tool", map[string]any{
			"accepted_bytes": s.pipe.Stats().Bytes,
		})
	}
	s.killProcess()
}

// readFailed handles a channel error. Errors caused by our own kill are expected.
func (s *Supervisor) readFailed(channel string, err error) {
	if s.wasKilled() {
		s.logger.Debug("channel closed after kill", map[string]any{
			"channel": channel,
			"error":   err.Error(),
		})
		return
	}
	s.config.Collector.IncReadErrors()
	if s.status.set(types.RunStatusProcessError, fmt.Sprintf("%s read failed: %v", channel, err)) {
		s.logger.Error("channel read failed", map[string]any{
			"channel": channel,
			"error":   err.Error(),
		})
	}
	s.killProcess()
}

// settlePipeline drains an accepted run and discards one whose banner
// was never classified.
func (s *Supervisor) settlePipeline() {
	s.mu.Lock()
	accepted, rejected := s.bannerAccepted, s.bannerRejected
	s.mu.Unlock()

	switch {
	case rejected:
	case accepted:
		s.pipe.Finish()
		s.pipe.Wait()
	default:
		s.pipe.Discard()
	}
}

func (s *Supervisor) tap(channel string, chunk []byte) {
	if s.config.ChunkTap != nil {
		s.config.ChunkTap(channel, chunk)
	}
}

func (s *Supervisor) tick(n int) {
	if n > 0 {
		s.config.Observer.ProgressTick(n)
	}
}

// onGroup runs on the pipeline consumer goroutine.
func (s *Supervisor) onGroup(group types.MessageGroup) {
	s.seq++
	envelope := &types.GroupEnvelope{
		RunID: s.config.RunMeta.RunID,
		Seq:   s.seq,
		Group: group,
	}

	s.config.Observer.GroupReady(envelope)

	if err := s.config.Policy.IngestGroup(s.persistCtx, envelope); err != nil {
		s.policyErrors.Add(1)
		s.logger.Warn("group not persisted", map[string]any{
			"seq":   envelope.Seq,
			"error": err.Error(),
		})
	}
}

// complete finalizes the status, records the run and notifies the observer.
func (s *Supervisor) complete(exitCode int) *RunResult {
	status, message := s.status.finalize(s.progress.AllRequestedObserved())

	result := &RunResult{
		RunMeta:        s.config.RunMeta,
		Status:         status,
		Message:        message,
		ExitCode:       exitCode,
		StartedAt:      s.startTime,
		Duration:       time.Since(s.startTime),
		FilesRequested: s.progress.Requested(),
		FilesObserved:  s.progress.Observed(),
		FilesMissing:   s.progress.Missing(),
		Pipeline:       s.pipe.Stats(),
	}

	flushCtx, cancel := context.WithTimeout(s.persistCtx, persistTimeout)
	if err := s.config.Policy.RecordRun(flushCtx, result.Summary()); err != nil {
		s.policyErrors.Add(1)
		s.logger.Warn("run record not persisted (best effort)", map[string]any{
			"error": err.Error(),
		})
	}
	cancel()

	result.PolicyStats = s.config.Policy.Stats()
	result.PolicyErrors = s.policyErrors.Load()
	s.recordMetrics(result)

	s.logger.Info("lint run finished", map[string]any{
		"status":   string(result.Status),
		"groups":   result.Pipeline.Groups,
		"observed": result.FilesObserved,
		"missing":  len(result.FilesMissing),
		"duration": result.Duration.String(),
	})

	s.config.Observer.RunComplete(result)
	return result
}

// flushTriggerReporter is implemented by batching policies.
type flushTriggerReporter interface {
	FlushTriggerStats() map[policy.FlushTrigger]int64
}

func (s *Supervisor) recordMetrics(result *RunResult) {
	c := s.config.Collector

	switch result.Status {
	case types.RunStatusComplete:
		c.IncRunComplete()
	case types.RunStatusPartialComplete:
		c.IncRunPartial()
	case types.RunStatusAborted:
		c.IncRunAborted()
	default:
		c.IncRunFailed()
	}

	ps := result.Pipeline
	c.AbsorbPipelineStats(metrics.PipelineCounts{
		Chunks:           ps.Chunks,
		Bytes:            ps.Bytes,
		Modules:          ps.Modules,
		MalformedRecords: ps.MalformedRecords,
		Messages:         ps.Messages,
		Duplicates:       ps.Duplicates,
		Groups:           ps.Groups,
	})

	var triggers map[string]int64
	if r, ok := s.config.Policy.(flushTriggerReporter); ok {
		triggers = make(map[string]int64)
		for k, v := range r.FlushTriggerStats() {
			triggers[string(k)] = v
		}
	}
	pol := result.PolicyStats
	c.AbsorbPolicyStats(pol.TotalGroups, pol.GroupsPersisted, pol.GroupsDropped, triggers)
}
