package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/adapter"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/adapter/redis"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/adapter/webhook"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/config"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
)

const (
	// defaultToolName is the storage partition key when none is configured.
	defaultToolName = "pclp"
	// defaultToolPath is the executable looked up on PATH.
	defaultToolPath = "pclp64"
)

// LintCommand returns the lint command.
// This is the only command that launches the lint tool.
func LintCommand() *cli.Command {
	flags := []cli.Flag{
		// Tool
		&cli.StringFlag{Name: "tool", Usage: "Logical tool name (storage partition key)"},
		&cli.StringFlag{Name: "tool-path", Usage: "Lint executable (default " + defaultToolPath + ")"},
		&cli.StringFlag{Name: "options", Usage: "Options file passed ahead of the sources"},
		&cli.StringFlag{Name: "workdir", Usage: "Working directory of the tool and root of source globs"},
		&cli.StringSliceFlag{Name: "arg", Usage: "Extra tool argument (repeatable)"},
		&cli.StringSliceFlag{Name: "env", Usage: "Extra KEY=VALUE for the tool environment (repeatable)"},
		&cli.DurationFlag{Name: "timeout", Usage: "Kill the tool after this long (default 10m, negative = no limit)"},
		&cli.DurationFlag{Name: "launch-timeout", Usage: "Fail if the tool has not started within this long"},
		&cli.IntFlag{Name: "max-command-line", Usage: "Command line budget before splitting into batches (negative = never split)"},

		// Policy
		&cli.StringFlag{Name: "policy", Usage: "Ingestion policy: strict or streaming"},
		&cli.IntFlag{Name: "flush-count", Usage: "Streaming policy: flush after this many groups"},
		&cli.DurationFlag{Name: "flush-interval", Usage: "Streaming policy: flush at least this often"},

		// Adapter
		&cli.StringFlag{Name: "adapter", Usage: "Completion event adapter: webhook or redis"},
		&cli.StringFlag{Name: "adapter-url", Usage: "Adapter endpoint URL"},

		// Outputs
		&cli.StringFlag{Name: "dump", Usage: "Record the raw tool output to this file"},
		&cli.StringFlag{Name: "report", Usage: "Write a JSON run report to this file (- for stderr)"},
		&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Re-lint when source files change"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the result summary"},
		&cli.BoolFlag{Name: "no-progress", Usage: "Disable the progress bar"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error", Value: "info"},
	}
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:      "lint",
		Usage:     "Run the lint tool over source files and stream its findings",
		ArgsUsage: "[file or glob...]",
		Flags:     flags,
		Action:    lintAction,
	}
}

func lintAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeProcessFailure)
	}

	opts := resolveLintOptions(c, cfg)
	if err := validateLintOptions(opts); err != nil {
		return cli.Exit(fmt.Sprintf("invalid lint config: %v", err), runtime.ExitCodeProcessFailure)
	}

	storage := resolveStorage(c, cfg.Storage)
	switch storage.backend {
	case "", "fs", "s3":
	default:
		return cli.Exit(fmt.Sprintf("unknown storage backend: %s (must be fs or s3)", storage.backend), runtime.ExitCodeProcessFailure)
	}

	root := opts.workDir
	if root == "" {
		root = "."
	}
	files, err := expandSources(root, cfg.Sources.Include, cfg.Sources.Exclude, c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeProcessFailure)
	}
	if len(files) == 0 && !c.Bool("watch") {
		return cli.Exit("no files to lint", runtime.ExitCodeProcessFailure)
	}

	adapterCfg := cfg.Adapter
	if v := c.String("adapter"); v != "" {
		adapterCfg.Type = v
	}
	if v := c.String("adapter-url"); v != "" {
		adapterCfg.URL = v
	}
	publisher, err := buildAdapter(adapterCfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid adapter config: %v", err), runtime.ExitCodeProcessFailure)
	}
	if publisher != nil {
		defer func() { _ = publisher.Close() }()
	}

	logger := log.NewCLILogger(opts.logLevel)

	var progress *progressObserver
	var observer runtime.Observer
	if !c.Bool("quiet") && !c.Bool("no-progress") && isStderrTTY() {
		progress = newProgressObserver(len(files), os.Stderr)
		observer = progress
	}

	session := newLintSession(opts, storage, publisher, observer, logger)
	if !c.Bool("quiet") {
		session.out = os.Stdout
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lintOnce := func(files []string) (int, error) {
		if progress != nil {
			progress.Reset(len(files))
		}
		res, err := session.run(ctx, files)
		if progress != nil {
			progress.Finish()
		}
		if err != nil {
			return runtime.ExitCodeProcessFailure, err
		}
		return runtime.ExitCodeForStatus(res.Status), nil
	}

	if !c.Bool("watch") {
		code, err := lintOnce(files)
		if err != nil {
			return cli.Exit(fmt.Sprintf("lint failed: %v", err), code)
		}
		return cli.Exit("", code)
	}

	return watchAndLint(ctx, root, cfg.Sources, c.Args().Slice(), files, lintOnce, logger)
}

// watchAndLint lints files once, then again after every batch of source
// changes, until ctx is cancelled. Failed runs are logged, not fatal.
func watchAndLint(ctx context.Context, root string, sources config.SourcesConfig, args, files []string, lintOnce func([]string) (int, error), logger *log.Logger) error {
	include := append([]string{}, sources.Include...)
	for _, a := range args {
		include = append(include, filepath.ToSlash(filepath.Clean(a)))
	}
	watcher, err := newSourceWatcher(root, include, sources.Exclude, logger.With("watch"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to watch sources: %v", err), runtime.ExitCodeProcessFailure)
	}

	report := func(files []string) {
		if len(files) == 0 {
			logger.Info("no files to lint, waiting for changes", nil)
			return
		}
		code, err := lintOnce(files)
		fields := map[string]any{"files": len(files), "exit_code": code}
		if err != nil {
			fields["error"] = err.Error()
			logger.Error("lint failed", fields)
			return
		}
		logger.Info("lint finished", fields)
	}

	report(files)
	logger.Info("watching sources", map[string]any{"root": root})

	err = watcher.Run(ctx, func(changed []string) {
		logger.Debug("sources changed", map[string]any{"changed": changed})
		files, err := expandSources(root, sources.Include, sources.Exclude, args)
		if err != nil {
			logger.Error("failed to expand sources", map[string]any{"error": err.Error()})
			return
		}
		report(files)
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("watch failed: %v", err), runtime.ExitCodeProcessFailure)
	}
	return nil
}

// resolveLintOptions merges lint flags over the config file.
func resolveLintOptions(c *cli.Context, cfg *config.Config) lintOptions {
	tool := cfg.Tool
	opts := lintOptions{
		tool:           firstNonEmpty(c.String("tool"), tool.Name, defaultToolName),
		toolPath:       firstNonEmpty(c.String("tool-path"), tool.Path, defaultToolPath),
		optionsFile:    firstNonEmpty(c.String("options"), tool.OptionsFile),
		workDir:        firstNonEmpty(c.String("workdir"), tool.WorkDir),
		args:           tool.Args,
		env:            tool.Env,
		timeout:        tool.Timeout.Duration,
		launchTimeout:  tool.LaunchTimeout.Duration,
		maxCommandLine: tool.MaxCommandLine,
		banner:         tool.Banner,

		policy:        firstNonEmpty(c.String("policy"), cfg.Policy.Name),
		flushCount:    cfg.Policy.FlushCount,
		flushInterval: cfg.Policy.FlushInterval.Duration,

		dumpPath:   firstNonEmpty(c.String("dump"), cfg.Dump),
		reportPath: firstNonEmpty(c.String("report"), cfg.Report),
		logLevel:   c.String("log-level"),
	}
	if c.IsSet("arg") {
		opts.args = c.StringSlice("arg")
	}
	if c.IsSet("env") {
		opts.env = append(append([]string{}, tool.Env...), c.StringSlice("env")...)
	}
	if c.IsSet("timeout") {
		opts.timeout = c.Duration("timeout")
	}
	if c.IsSet("launch-timeout") {
		opts.launchTimeout = c.Duration("launch-timeout")
	}
	if c.IsSet("max-command-line") {
		opts.maxCommandLine = c.Int("max-command-line")
	}
	if c.IsSet("flush-count") {
		opts.flushCount = c.Int("flush-count")
	}
	if c.IsSet("flush-interval") {
		opts.flushInterval = c.Duration("flush-interval")
	}
	return opts
}

func validateLintOptions(opts lintOptions) error {
	var errs []error
	switch opts.policy {
	case "", "strict":
		if opts.flushCount > 0 || opts.flushInterval > 0 {
			fmt.Fprintf(os.Stderr, "Warning: flush flags ignored for strict policy\n")
		}
	case "streaming":
		if opts.flushCount <= 0 && opts.flushInterval <= 0 {
			errs = append(errs, errors.New("streaming policy requires --flush-count > 0 or --flush-interval > 0"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown policy: %s (must be strict or streaming)", opts.policy))
	}
	if opts.flushCount < 0 {
		errs = append(errs, fmt.Errorf("flush count must be >= 0, got %d", opts.flushCount))
	}
	if opts.launchTimeout < 0 {
		errs = append(errs, fmt.Errorf("launch timeout must be >= 0, got %s", opts.launchTimeout))
	}
	return errors.Join(errs...)
}

// buildAdapter creates the completion event publisher. A config with no
// type yields nil.
func buildAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "webhook":
		retries := webhook.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		a, err := webhook.New(webhook.Config{
			URL:     cfg.URL,
			Headers: cfg.Headers,
			Timeout: cfg.Timeout.Duration,
			Retries: retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		retries := redis.DefaultRetries
		if cfg.Retries != nil {
			retries = *cfg.Retries
		}
		a, err := redis.New(redis.Config{
			URL:          cfg.URL,
			Channel:      cfg.Channel,
			HistoryKey:   cfg.HistoryKey,
			HistoryLimit: cfg.HistoryLimit,
			Timeout:      cfg.Timeout.Duration,
			Retries:      retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s (must be webhook or redis)", cfg.Type)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
