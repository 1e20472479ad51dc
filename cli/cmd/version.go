package cmd

import (
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/render"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	RecordSchema string `json:"record_schema"`
	GoVersion    string `json:"go_version"`
	DefaultTool  string `json:"default_tool"`
}

// VersionCommand returns the version command.
// It never touches storage or the lint tool.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", 1)
		}

		return r.Render(newVersionResponse(commit))
	}
}

func newVersionResponse(commit string) VersionResponse {
	return VersionResponse{
		Version:      types.Version,
		Commit:       commit,
		RecordSchema: types.RecordSchemaVersion,
		GoVersion:    runtime.Version(),
		DefaultTool:  defaultToolName,
	}
}
