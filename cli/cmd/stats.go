package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/render"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/tui"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/lode"
)

// StatsCommand returns the stats command with subcommands.
// Stats returns aggregated, derived facts about a stored run.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregated statistics of a stored run",
		Subcommands: []*cli.Command{
			statsRunCommand(),
			statsMetricsCommand(),
		},
	}
}

func statsRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Message counts by type, file and number",
		ArgsUsage: "<run-id>",
		Flags:     append(TUIReadOnlyFlags(), StorageFlags()...),
		Action:    statsRunAction,
	}
}

func statsRunAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("run-id required", 1)
	}
	runID := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := openReader(c)
	if err != nil {
		return err
	}

	stats, err := rd.StatsRun(c.Context, runID)
	if err != nil {
		return readError(runID, err)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsRun, stats)
	}
	return r.Render(stats)
}

func statsMetricsCommand() *cli.Command {
	return &cli.Command{
		Name:      "metrics",
		Usage:     "Show the stored metrics record of a run (latest run if omitted)",
		ArgsUsage: "[run-id]",
		Flags:     append(TUIReadOnlyFlags(), StorageFlags()...),
		Action:    statsMetricsAction,
	}
}

func statsMetricsAction(c *cli.Context) error {
	runID := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	rd, err := openReader(c)
	if err != nil {
		return err
	}

	snapshot, err := rd.RunMetrics(c.Context, runID)
	if err != nil {
		if errors.Is(err, lode.ErrNoMetricsFound) {
			return cli.Exit(fmt.Sprintf("no metrics recorded%s", forRun(runID)), 1)
		}
		return fmt.Errorf("failed to read metrics: %w", err)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsMetrics, snapshot)
	}
	return r.Render(snapshot)
}

func forRun(runID string) string {
	if runID == "" {
		return ""
	}
	return " for run " + runID
}
