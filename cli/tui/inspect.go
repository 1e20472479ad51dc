package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/cli/reader"
)

const (
	defaultWidth  = 100
	defaultHeight = 24
	// chrome is the rows taken by the title and help line.
	chrome = 4
)

// InspectModel is a Bubble Tea model for inspect views.
// Group listings scroll in a viewport; run details are static.
type InspectModel struct {
	viewType string
	data     any
	viewport viewport.Model
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	m := InspectModel{
		viewType: viewType,
		data:     data,
		viewport: viewport.New(defaultWidth, defaultHeight-chrome),
	}
	m.viewport.SetContent(m.renderBody())
	return m
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.viewport.SetContent(m.renderBody())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	help := HelpStyle.Render("↑/↓ scroll • q quit")
	if m.viewType == ViewInspectGroups {
		help = HelpStyle.Render(fmt.Sprintf("%3.f%% • ↑/↓ scroll • q quit", m.viewport.ScrollPercent()*100))
	}
	return m.viewport.View() + "\n" + help
}

func (m InspectModel) renderBody() string {
	switch m.viewType {
	case ViewInspectRun:
		return m.renderInspectRun()
	case ViewInspectGroups:
		return m.renderInspectGroups()
	default:
		return fmt.Sprintf("Unknown view type: %s", m.viewType)
	}
}

func (m InspectModel) renderInspectRun() string {
	data, ok := m.data.(*reader.RunView)
	if !ok {
		return "Invalid data type for inspect_run"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run Details"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Run ID", data.RunID},
		{"Tool", data.Tool},
		{"Batch", fmt.Sprintf("%d/%d", data.Batch, data.Batches)},
		{"Status", data.Status},
		{"Exit Code", fmt.Sprintf("%d", data.ExitCode)},
		{"Started At", data.StartedAt.Format("2006-01-02 15:04:05")},
		{"Duration", fmt.Sprintf("%.2fs", data.DurationSeconds)},
		{"Files", fmt.Sprintf("%d/%d", data.FilesObserved, data.FilesRequested)},
		{"Messages", fmt.Sprintf("%d", data.Messages)},
		{"Groups", fmt.Sprintf("%d", data.Groups)},
		{"Duplicates", fmt.Sprintf("%d", data.Duplicates)},
		{"Malformed", fmt.Sprintf("%d", data.MalformedRecords)},
	}
	if data.ParentRunID != nil {
		rows = append(rows, []string{"Parent Run", *data.ParentRunID})
	}
	if data.Message != "" {
		rows = append(rows, []string{"Message", data.Message})
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := ValueStyle.Render(row[1])
		if row[0] == "Status" {
			value = StatusStyle(data.Status).Render(row[1])
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	if len(data.FilesMissing) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Missing files:"))
		b.WriteString("\n")
		for _, f := range data.FilesMissing {
			b.WriteString(fmt.Sprintf("  • %s\n", WarningStyle.Render(f)))
		}
	}

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderInspectGroups() string {
	data, ok := m.data.([]reader.GroupItem)
	if !ok {
		return "Invalid data type for inspect_groups"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Groups (%d)", len(data))))
	b.WriteString("\n")

	if len(data) == 0 {
		b.WriteString(HelpStyle.Render("No groups recorded for this run."))
		return b.String()
	}

	for _, g := range data {
		kind := MessageTypeStyle(g.Type).Render(fmt.Sprintf("%-7s %4d", g.Type, g.Number))
		loc := LabelStyle.UnsetWidth().Render(fmt.Sprintf("%s:%d", g.File, g.Line))
		line := fmt.Sprintf("%5d  %s  %s  %s", g.Seq, kind, loc, ValueStyle.Render(g.Description))
		if g.Supplementals > 0 {
			line += HelpStyle.UnsetMarginTop().Render(fmt.Sprintf("  (+%d)", g.Supplementals))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without a running program.
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	return lipgloss.NewStyle().Padding(1, 2).Render(model.renderBody())
}
