package types

// RunStatus is the outcome of one lint tool invocation.
type RunStatus string

// Run status constants.
const (
	RunStatusUnknown            RunStatus = "unknown"
	RunStatusComplete           RunStatus = "complete"
	RunStatusPartialComplete    RunStatus = "partial_complete"
	RunStatusLicenseError       RunStatus = "license_error"
	RunStatusUnsupportedVersion RunStatus = "unsupported_version"
	RunStatusProcessError       RunStatus = "process_error"
	RunStatusProcessTimeout     RunStatus = "process_timeout"
	RunStatusAborted            RunStatus = "aborted"
)

// IsFailure reports whether the status is a terminal failure set before
// normal exit. Complete, PartialComplete and Unknown are not failures.
func (s RunStatus) IsFailure() bool {
	switch s {
	case RunStatusLicenseError, RunStatusUnsupportedVersion,
		RunStatusProcessError, RunStatusProcessTimeout, RunStatusAborted:
		return true
	default:
		return false
	}
}

// Severity orders statuses from best to worst for aggregating batched runs.
func (s RunStatus) Severity() int {
	switch s {
	case RunStatusComplete:
		return 0
	case RunStatusPartialComplete:
		return 1
	case RunStatusUnknown:
		return 2
	case RunStatusProcessError, RunStatusProcessTimeout:
		return 3
	case RunStatusLicenseError, RunStatusUnsupportedVersion:
		return 4
	case RunStatusAborted:
		return 5
	default:
		return 2
	}
}

// WorstStatus returns the most severe of the given statuses.
// Returns RunStatusUnknown for an empty list.
func WorstStatus(statuses ...RunStatus) RunStatus {
	if len(statuses) == 0 {
		return RunStatusUnknown
	}
	worst := statuses[0]
	for _, s := range statuses[1:] {
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}
