package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
)

// barWidth is the widest breakdown bar in cells.
const barWidth = 30

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewStatsRun:
		content = m.renderStatsRun()
	case ViewStatsMetrics:
		content = m.renderStatsMetrics()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsRun() string {
	data, ok := m.data.(*reader.RunStats)
	if !ok {
		return "Invalid data type for stats_run"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run " + data.RunID))
	b.WriteString(" ")
	b.WriteString(StatusStyle(data.Status).Render(data.Status))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Groups", int64(data.Groups), highlightColor),
		m.renderStatBox("Messages", int64(data.Messages), highlightColor),
		m.renderStatBox("Errors", int64(countOf(data.ByType, "error")), errorColor),
		m.renderStatBox("Warnings", int64(countOf(data.ByType, "warning")), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	sections := []string{
		renderBreakdown("By type", data.ByType),
		renderBreakdown("Top numbers", data.TopNumbers),
		renderBreakdown("By file", data.ByFile),
	}
	b.WriteString(strings.Join(sections, "\n"))

	return b.String()
}

func (m StatsModel) renderStatsMetrics() string {
	data, ok := m.data.(*reader.MetricsSnapshot)
	if !ok {
		return "Invalid data type for stats_metrics"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Metrics " + data.RunID))
	b.WriteString("\n\n")

	top := []string{
		m.renderStatBox("Chunks", data.Chunks, highlightColor),
		m.renderStatBox("Modules", data.Modules, highlightColor),
		m.renderStatBox("Messages", data.Messages, highlightColor),
		m.renderStatBox("Groups", data.Groups, successColor),
	}
	bottom := []string{
		m.renderStatBox("Duplicates", data.Duplicates, warningColor),
		m.renderStatBox("Malformed", data.MalformedRecords, errorColor),
		m.renderStatBox("Persisted", data.GroupsPersisted, successColor),
		m.renderStatBox("Dropped", data.GroupsDropped, errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, top...))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, bottom...))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Tool", data.Tool},
		{"Policy", data.Policy},
		{"Storage", data.StorageBackend},
		{"Recorded At", data.Ts},
		{"Lode Writes", fmt.Sprintf("%d ok / %d failed", data.LodeWriteSuccess, data.LodeWriteFailure)},
	}
	if len(data.FlushTriggers) > 0 {
		names := make([]string, 0, len(data.FlushTriggers))
		for k := range data.FlushTriggers {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, k := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", k, data.FlushTriggers[k]))
		}
		rows = append(rows, []string{"Flush Triggers", strings.Join(parts, " ")})
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label string, value int64, color lipgloss.Color) string {
	style := StatBoxStyle.BorderForeground(color)
	content := fmt.Sprintf("%s\n%s",
		StatLabelStyle.Render(label),
		StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value)))
	return style.Render(content)
}

// renderBreakdown draws one bar per bucket, scaled to the largest count.
func renderBreakdown(title string, items []reader.CountItem) string {
	var b strings.Builder
	b.WriteString(LabelStyle.UnsetWidth().Bold(true).Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("  -\n")
		return b.String()
	}

	peak := items[0].Count
	for _, it := range items {
		peak = max(peak, it.Count)
	}
	for _, it := range items {
		n := 1
		if peak > 0 {
			n = max(it.Count*barWidth/peak, 1)
		}
		b.WriteString(fmt.Sprintf("  %-32s %s %d\n",
			truncate(it.Key, 32),
			InfoStyle.Render(strings.Repeat("█", n)),
			it.Count))
	}
	return b.String()
}

func countOf(items []reader.CountItem, key string) int {
	for _, it := range items {
		if it.Key == key {
			return it.Count
		}
	}
	return 0
}

// truncate keeps the tail of long keys, where file names live.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	model := NewStatsModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without a running program.
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
