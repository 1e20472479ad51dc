package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"inspect_run", true},
		{"inspect_groups", true},
		{"stats_run", true},
		{"stats_metrics", true},

		{"list_runs", false},
		{"version", false},
		{"lint", false},
		{"replay", false},
		{"inspect_job", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()
	if len(views) != 4 {
		t.Errorf("SupportedTUIViews() returned %d views, expected 4", len(views))
	}
	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("list_runs", nil); err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func TestRenderInspectStatic_Run(t *testing.T) {
	parent := "run-001"
	out := RenderInspectStatic(ViewInspectRun, &reader.RunView{
		RunID:          "run-002",
		ParentRunID:    &parent,
		Tool:           "pclp",
		Batch:          2,
		Batches:        2,
		Status:         "partial_complete",
		StartedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		FilesRequested: 3,
		FilesObserved:  2,
		FilesMissing:   []string{"c:/src/missing.c"},
	})

	for _, want := range []string{"run-002", "partial_complete", "2/2", "2/3", "c:/src/missing.c", "run-001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderInspectStatic_Groups(t *testing.T) {
	out := RenderInspectStatic(ViewInspectGroups, []reader.GroupItem{
		{Seq: 0, File: "a.c", Line: 10, Type: "warning", Number: 534, Description: "Ignoring return value", Supplementals: 1},
		{Seq: 1, File: "b.c", Line: 3, Type: "error", Number: 10, Description: "Expecting ';'"},
	})

	for _, want := range []string{"Groups (2)", "a.c:10", "534", "Ignoring return value", "(+1)", "b.c:3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderInspectStatic_WrongData(t *testing.T) {
	out := RenderInspectStatic(ViewInspectRun, "not a run")
	if !strings.Contains(out, "Invalid data type") {
		t.Errorf("output = %q", out)
	}
}

func TestRenderStatsStatic_Run(t *testing.T) {
	out := RenderStatsStatic(ViewStatsRun, &reader.RunStats{
		RunID:    "run-001",
		Status:   "complete",
		Groups:   3,
		Messages: 4,
		ByType: []reader.CountItem{
			{Key: "warning", Count: 2},
			{Key: "error", Count: 1},
		},
		ByFile:     []reader.CountItem{{Key: "a.c", Count: 3}},
		TopNumbers: []reader.CountItem{{Key: "534", Count: 2}},
	})

	for _, want := range []string{"run-001", "complete", "Errors", "Warnings", "By type", "Top numbers", "534", "a.c"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatsStatic_Metrics(t *testing.T) {
	out := RenderStatsStatic(ViewStatsMetrics, &reader.MetricsSnapshot{
		RunID:         "run-001",
		Policy:        "streaming",
		Groups:        13,
		FlushTriggers: map[string]int64{"termination": 1, "count": 2},
	})

	for _, want := range []string{"run-001", "streaming", "count=2 termination=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectModel_QuitKey(t *testing.T) {
	m := NewInspectModel(ViewInspectGroups, []reader.GroupItem{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if v := next.View(); v != "" {
		t.Errorf("View after quit = %q, want empty", v)
	}
}

func TestStatsModel_QuitKey(t *testing.T) {
	m := NewStatsModel(ViewStatsRun, &reader.RunStats{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if v := next.View(); v != "" {
		t.Errorf("View after quit = %q, want empty", v)
	}
}

func TestInspectModel_WindowResize(t *testing.T) {
	m := NewInspectModel(ViewInspectRun, &reader.RunView{RunID: "run-001"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	im := next.(InspectModel)
	if im.viewport.Width != 120 || im.viewport.Height != 40-chrome {
		t.Errorf("viewport = %dx%d", im.viewport.Width, im.viewport.Height)
	}
}
