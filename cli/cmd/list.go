package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/render"
)

// listWarningThreshold is the number of items above which we warn about using --limit.
const listWarningThreshold = 100

// ListCommand returns the list command.
// List returns thin rows, not inspect-level detail.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored entities",
		Subcommands: []*cli.Command{
			listRunsCommand(),
		},
	}
}

func listRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List stored runs, newest first",
		Flags: append(append(ReadOnlyFlags(), StorageFlags()...),
			&cli.StringFlag{Name: "tool", Usage: "Filter by tool partition"},
			&cli.StringFlag{Name: "day", Usage: "Filter by day partition (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "status", Usage: "Filter by run status, e.g. complete, partial_complete"},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: listRunsAction,
	}
}

func listRunsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", 1)
	}

	rd, err := openReader(c)
	if err != nil {
		return err
	}

	opts := reader.ListRunsOptions{
		Tool:   c.String("tool"),
		Day:    c.String("day"),
		Status: c.String("status"),
		Limit:  c.Int("limit"),
	}
	results, err := rd.ListRuns(c.Context, opts)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	// TTY only, to keep pipelines quiet.
	if len(results) > listWarningThreshold && opts.Limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(results))
	}

	return r.Render(results)
}
