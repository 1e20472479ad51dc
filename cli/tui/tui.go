package tui

import (
	"fmt"
	"strings"
)

// View types with a TUI rendering.
const (
	ViewInspectRun    = "inspect_run"
	ViewInspectGroups = "inspect_groups"
	ViewStatsRun      = "stats_run"
	ViewStatsMetrics  = "stats_metrics"
)

// Run starts the TUI for viewType.
// Returns an error if the view type has no TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	if strings.HasPrefix(viewType, "inspect_") {
		return RunInspectTUI(viewType, data)
	}
	return RunStatsTUI(viewType, data)
}

// IsTUISupported reports whether viewType has a TUI rendering.
// Only the read-only inspect and stats views do.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns the view types that support TUI.
func SupportedTUIViews() []string {
	return []string{
		ViewInspectRun,
		ViewInspectGroups,
		ViewStatsRun,
		ViewStatsMetrics,
	}
}
