// Package main provides the lintstream CLI entrypoint.
//
// lint is the only command that launches the lint tool; replay feeds a
// recorded dump through the same pipeline. Everything else reads storage.
//
// Usage:
//
//	lintstream <command> [subcommand] [options]
//
// Exit codes for lint and replay:
//   - 0: every requested file processed
//   - 1: tool exited normally with files missing
//   - 2: launch, read, wait or timeout failure; invalid configuration
//   - 3: license error or unsupported tool version
//   - 4: aborted
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/cmd"
	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "lintstream",
		Usage:          "Stream PC-lint Plus findings into grouped, persisted results",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.LintCommand(),
			cmd.ReplayCommand(),
			cmd.InspectCommand(),
			cmd.StatsCommand(),
			cmd.ListCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit(), so lint statuses
// reach the shell.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(reportExit(os.Stderr, err))
}

// reportExit prints err's message to w when it has one and returns the
// process exit code.
func reportExit(w io.Writer, err error) int {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
