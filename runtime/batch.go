package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/pipeline"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultMaxCommandLine is the Windows command-line ceiling in characters.
const DefaultMaxCommandLine = 32000

// argLen is the command-line cost of one argument: a separating space,
// plus quotes when the argument contains whitespace.
func argLen(arg string) int {
	n := len(arg) + 1
	if strings.ContainsAny(arg, " \t") {
		n += 2
	}
	return n
}

// CommandLineLen returns the cost of a full command line.
func CommandLineLen(tool string, args []string) int {
	n := argLen(tool)
	for _, a := range args {
		n += argLen(a)
	}
	return n
}

// SplitFiles partitions files, in order, into batches whose cost added to
// base stays within budget. A file that alone exceeds the budget still
// gets a batch of its own. A non-positive budget disables splitting.
func SplitFiles(files []string, base, budget int) [][]string {
	if len(files) == 0 {
		return nil
	}
	if budget <= 0 {
		return [][]string{files}
	}

	var batches [][]string
	var current []string
	size := base
	for _, f := range files {
		n := argLen(f)
		if len(current) > 0 && size+n > budget {
			batches = append(batches, current)
			current = nil
			size = base
		}
		current = append(current, f)
		size += n
	}
	return append(batches, current)
}

// SessionConfig configures a possibly batched lint session.
type SessionConfig struct {
	// Run is the template for every batch. Files and RunMeta are replaced
	// per batch; Pipeline is shared across batches.
	Run RunConfig
	// Files is the full requested file list.
	Files []string
	// Tool is the logical tool name recorded on every run.
	Tool string
	// MaxCommandLine is the command-line budget. Zero selects
	// DefaultMaxCommandLine; negative disables splitting.
	MaxCommandLine int
	// NewRunID generates run identifiers. Defaults to uuid.NewString.
	NewRunID func() string
	// BeforeRun adjusts each batch's config after Files and RunMeta are
	// set, e.g. to attach a per-run policy. An error ends the session.
	BeforeRun func(run *RunConfig) error
	// AfterRun is called once per executed batch, with a nil result if
	// the tool failed to launch.
	AfterRun func(run *RunConfig, result *RunResult)
}

// SessionResult aggregates the runs of one session.
type SessionResult struct {
	// Runs holds one result per executed batch, in order.
	Runs []*RunResult
	// Batches is the planned batch count; fewer run if the session stops early.
	Batches int
	// Status is the worst status across Runs.
	Status types.RunStatus
}

// Groups returns the total groups emitted across runs.
func (r *SessionResult) Groups() int64 {
	var n int64
	for _, run := range r.Runs {
		n += run.Pipeline.Groups
	}
	return n
}

// RunSession runs the file list as sequential tool invocations, each its
// own run linked to the first. The session stops early on a banner
// rejection or abort, since every later batch would fail the same way.
// A launch failure is returned as an error alongside the runs completed so far.
func RunSession(ctx context.Context, config SessionConfig) (*SessionResult, error) {
	budget := config.MaxCommandLine
	if budget == 0 {
		budget = DefaultMaxCommandLine
	}
	newID := config.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}
	if config.Tool == "" {
		return nil, errors.New("session tool name is required")
	}

	base := CommandLineLen(config.Run.ToolPath, BuildArgs(config.Run.ExtraArgs, config.Run.OptionsFile, nil))
	batches := SplitFiles(config.Files, base, budget)
	if len(batches) == 0 {
		return nil, errors.New("no files to lint")
	}

	shared := config.Run.Pipeline
	if shared == nil {
		shared = pipeline.New(pipeline.Config{
			PathCacheSize: config.Run.PathCacheSize,
			Logger:        config.Run.Logger,
		})
	}

	result := &SessionResult{Batches: len(batches)}
	var statuses []types.RunStatus
	var parent *string

	for i, files := range batches {
		if ctx.Err() != nil {
			break
		}

		meta := &types.RunMeta{
			RunID:       newID(),
			Tool:        config.Tool,
			ParentRunID: parent,
			Batch:       i + 1,
			Batches:     len(batches),
		}
		if parent == nil {
			first := meta.RunID
			parent = &first
		}

		runConfig := config.Run
		runConfig.Files = files
		runConfig.RunMeta = meta
		runConfig.Pipeline = shared

		if config.BeforeRun != nil {
			if err := config.BeforeRun(&runConfig); err != nil {
				return result, fmt.Errorf("batch %d: %w", i+1, err)
			}
		}

		sup, err := NewSupervisor(&runConfig)
		if err != nil {
			return result, fmt.Errorf("batch %d: %w", i+1, err)
		}
		run, err := sup.Execute(ctx)
		if config.AfterRun != nil {
			config.AfterRun(&runConfig, run)
		}
		if err != nil {
			return result, fmt.Errorf("batch %d: %w", i+1, err)
		}

		result.Runs = append(result.Runs, run)
		statuses = append(statuses, run.Status)

		if stopsSession(run.Status) {
			break
		}
	}

	if len(statuses) == 0 {
		statuses = append(statuses, types.RunStatusAborted)
	}
	result.Status = types.WorstStatus(statuses...)
	return result, nil
}

func stopsSession(status types.RunStatus) bool {
	switch status {
	case types.RunStatusLicenseError, types.RunStatusUnsupportedVersion, types.RunStatusAborted:
		return true
	default:
		return false
	}
}
