package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/render"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/tui"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/lode"
)

// InspectCommand returns the inspect command with subcommands.
// Inspect returns a deep view of a single stored run.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a stored run (record, groups)",
		Subcommands: []*cli.Command{
			inspectRunCommand(),
			inspectGroupsCommand(),
		},
	}
}

func inspectRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Show a run record by ID",
		ArgsUsage: "<run-id>",
		Flags:     append(TUIReadOnlyFlags(), StorageFlags()...),
		Action:    inspectRunAction,
	}
}

func inspectRunAction(c *cli.Context) error {
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

	view, err := rd.InspectRun(c.Context, runID)
	if err != nil {
		return readError(runID, err)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectRun, view)
	}
	return r.Render(view)
}

func inspectGroupsCommand() *cli.Command {
	return &cli.Command{
		Name:      "groups",
		Usage:     "List the stored message groups of a run in emission order",
		ArgsUsage: "<run-id>",
		Flags: append(append(TUIReadOnlyFlags(), StorageFlags()...),
			&cli.StringFlag{
				Name:  "type",
				Usage: "Only groups whose primary message has this type (error, warning, info)",
			},
		),
		Action: inspectGroupsAction,
	}
}

func inspectGroupsAction(c *cli.Context) error {
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

	groups, err := rd.RunGroups(c.Context, runID)
	if err != nil {
		return readError(runID, err)
	}
	items := filterGroupItems(reader.NewGroupItems(groups), c.String("type"))

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectGroups, items)
	}
	return r.Render(items)
}

func filterGroupItems(items []reader.GroupItem, msgType string) []reader.GroupItem {
	if msgType == "" {
		return items
	}
	out := make([]reader.GroupItem, 0, len(items))
	for _, it := range items {
		if it.Type == msgType {
			out = append(out, it)
		}
	}
	return out
}

// readError maps a missing run to a friendly exit.
func readError(runID string, err error) error {
	if errors.Is(err, lode.ErrRunNotFound) {
		return cli.Exit(fmt.Sprintf("run %s not found", runID), 1)
	}
	return err
}
