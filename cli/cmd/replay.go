package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/dump"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/runtime"
)

// ReplayCommand returns the replay command.
// It feeds a recorded dump through the same pipeline as lint, without
// launching the tool.
func ReplayCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.Float64Flag{Name: "speed", Usage: "Timing scale: 1 = recorded pace, 0 = as fast as possible"},
		&cli.StringFlag{Name: "policy", Usage: "Ingestion policy: strict or streaming"},
		&cli.IntFlag{Name: "flush-count", Usage: "Streaming policy: flush after this many groups"},
		&cli.DurationFlag{Name: "flush-interval", Usage: "Streaming policy: flush at least this often"},
		&cli.StringFlag{Name: "report", Usage: "Write a JSON run report to this file (- for stderr)"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the result summary"},
		&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error", Value: "info"},
	}
	flags = append(flags, StorageFlags()...)

	return &cli.Command{
		Name:      "replay",
		Usage:     "Replay a recorded tool dump through the streaming pipeline",
		ArgsUsage: "<dump-file>",
		Flags:     flags,
		Action:    replayAction,
	}
}

func replayAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("replay requires exactly one dump file", runtime.ExitCodeProcessFailure)
	}
	if c.Float64("speed") < 0 {
		return cli.Exit("speed must be >= 0", runtime.ExitCodeProcessFailure)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), runtime.ExitCodeProcessFailure)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open dump: %v", err), runtime.ExitCodeProcessFailure)
	}
	defer func() { _ = f.Close() }()

	r, err := dump.NewReader(f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read dump: %v", err), runtime.ExitCodeProcessFailure)
	}
	header := r.Header()
	if len(header.Files) == 0 {
		return cli.Exit("dump records no requested files", runtime.ExitCodeProcessFailure)
	}

	opts := replayOptions(header, cfg.Tool.Banner)
	opts.policy = firstNonEmpty(c.String("policy"), cfg.Policy.Name)
	opts.flushCount = cfg.Policy.FlushCount
	opts.flushInterval = cfg.Policy.FlushInterval.Duration
	if c.IsSet("flush-count") {
		opts.flushCount = c.Int("flush-count")
	}
	if c.IsSet("flush-interval") {
		opts.flushInterval = c.Duration("flush-interval")
	}
	opts.reportPath = c.String("report")
	opts.logLevel = c.String("log-level")
	if err := validateLintOptions(opts); err != nil {
		return cli.Exit(fmt.Sprintf("invalid replay config: %v", err), runtime.ExitCodeProcessFailure)
	}

	session := newLintSession(opts, resolveStorage(c, cfg.Storage), nil, nil, log.NewCLILogger(opts.logLevel))
	session.factory = dump.NewReplayProcess(r, c.Float64("speed")).Factory()
	if !c.Bool("quiet") {
		session.out = os.Stdout
	}

	res, err := session.run(c.Context, header.Files)
	if err != nil {
		return cli.Exit(fmt.Sprintf("replay failed: %v", err), runtime.ExitCodeProcessFailure)
	}
	return cli.Exit("", runtime.ExitCodeForStatus(res.Status))
}

// replayOptions describes the recorded invocation. Splitting is disabled:
// a replay is always one run.
func replayOptions(header *dump.Header, banner runtime.BannerConfig) lintOptions {
	return lintOptions{
		tool:           firstNonEmpty(header.Tool, defaultToolName),
		toolPath:       firstNonEmpty(header.ToolPath, "replay"),
		maxCommandLine: -1,
		banner:         banner,
	}
}
