package runtime

import "github.com/Ayymoose/PC-Lint-GUI-sub000/types"

// Process exit codes returned by the lintstream CLI.
const (
	ExitCodeComplete       = 0 // every requested file processed
	ExitCodePartial        = 1 // normal exit with files missing
	ExitCodeProcessFailure = 2 // launch, read, wait or timeout failure
	ExitCodeToolRejected   = 3 // license error or unsupported version
	ExitCodeAborted        = 4 // user cancellation
)

// ExitCodeForStatus maps a run status to the CLI exit code.
// Unknown is treated as a process failure.
func ExitCodeForStatus(status types.RunStatus) int {
	switch status {
	case types.RunStatusComplete:
		return ExitCodeComplete
	case types.RunStatusPartialComplete:
		return ExitCodePartial
	case types.RunStatusLicenseError, types.RunStatusUnsupportedVersion:
		return ExitCodeToolRejected
	case types.RunStatusAborted:
		return ExitCodeAborted
	default:
		return ExitCodeProcessFailure
	}
}
