// Package funnelui provides the Bubble Tea funnel report interface.
package funnelui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/onboard/internal/model"
	"github.com/verte-zerg/onboard/internal/stats"
)

const (
	tabOverview = iota
	tabSteps
)

const loadTimeout = 10 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Config selects what the report covers.
type Config struct {
	Source   stats.CountSource
	Filter   model.FunnelFilter
	Names    map[int]string
	LastStep int
	// Origin labels where counts come from, e.g. a path or URL.
	Origin string
}

type reportMsg struct {
	report stats.Report
	err    error
}

// Model implements the Bubble Tea funnel UI.
type Model struct {
	cfg Config

	report  stats.Report
	loaded  bool
	loading bool
	errMsg  string

	tabs      []string
	activeTab int
	overview  viewport.Model
	steps     table.Model

	filterMode  bool
	filterInput textinput.Model
	filterError string

	width  int
	height int
}

// NewModel constructs a funnel UI model.
func NewModel(cfg Config) *Model {
	m := &Model{
		cfg:      cfg,
		tabs:     []string{"Overview", "Steps"},
		overview: viewport.New(0, 0),
		steps:    buildStepsTable(nil, nil, 0, 1),
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Since (YYYY-MM-DD): "
	m.filterInput.Placeholder = "any"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	cfg := m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		report, err := stats.BuildReport(ctx, cfg.Source, cfg.Filter, cfg.LastStep)
		return reportMsg{report: report, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case reportMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to load funnel: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.loaded = true
		m.report = msg.report
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h", "right", "l", "tab":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			if m.activeTab == tabSteps {
				m.steps.Focus()
			} else {
				m.steps.Blur()
			}
			return m, tea.ClearScreen
		case "r":
			return m, m.load()
		case "/":
			m.filterMode = true
			m.filterError = ""
			m.filterInput.SetValue(formatSince(m.cfg.Filter))
			return m, m.filterInput.Focus()
		default:
			var cmd tea.Cmd
			if m.activeTab == tabSteps {
				m.steps, cmd = m.steps.Update(msg)
			} else {
				m.overview, cmd = m.overview.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		filter, err := parseSince(m.filterInput.Value())
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg.Filter = filter
		m.filterMode = false
		m.filterInput.Blur()
		return m, m.load()
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.steps.SetWidth(m.width)
	m.steps.SetHeight(maxInt(1, bodyHeight-1))
	m.filterInput.Width = maxInt(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func (m *Model) renderContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.SetContent(renderOverview(m.report.Steps, m.cfg.Names, width))
	m.steps = buildStepsTable(m.report.Steps, m.cfg.Names, width, bodyHeight)
	if m.activeTab == tabSteps {
		m.steps.Focus()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := padLines(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width)
	since := formatSince(m.cfg.Filter)
	if since == "" {
		since = "any"
	}
	summary := fmt.Sprintf("Source: %s  since=%s", m.cfg.Origin, since)
	if m.loading {
		summary += "  loading..."
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)", m.filterInput.View()}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if !m.loaded {
		return "Loading funnel..."
	}
	if m.activeTab == tabSteps {
		if stats.Sessions(m.report.Steps) == 0 {
			return "No onboarding sessions found."
		}
		return tableMutedStyle.Render(m.steps.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel  ctrl+c: quit")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Refresh: r  Filter: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderOverview(rows []stats.StepFunnel, names map[int]string, width int) string {
	total := stats.Sessions(rows)
	if total == 0 {
		return "No onboarding sessions found."
	}
	last := rows[len(rows)-1]
	worst := "n/a"
	if w, ok := stats.WorstDropOff(rows); ok {
		worst = fmt.Sprintf("step %d (%s)", w.Step, stats.Percent(w.DropOff))
	}
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", total)),
		metricCard(fmt.Sprintf("Reached step %d", last.Step), stats.Percent(last.ReachRate)),
		metricCard("Largest drop-off", worst),
	}
	summary := strings.Join(cards, "\n")
	if width >= 80 {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	var buf bytes.Buffer
	if err := stats.RenderBars(&buf, rows, names, width, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildStepsTable(rows []stats.StepFunnel, names map[int]string, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Step", Width: 4},
		{Title: "Screen", Width: 14},
		{Title: "Visited", Width: 7},
		{Title: "Completed", Width: 9},
		{Title: "Completion", Width: 10},
		{Title: "Reach", Width: 6},
		{Title: "Drop-off", Width: 8},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row(stats.Row(r, names[r.Step])))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func parseSince(value string) (model.FunnelFilter, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "any" {
		return model.FunnelFilter{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return model.FunnelFilter{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return model.FunnelFilter{SinceMs: t.UnixMilli()}, nil
}

func formatSince(f model.FunnelFilter) string {
	if f.SinceMs <= 0 {
		return ""
	}
	return time.UnixMilli(f.SinceMs).Format("2006-01-02")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
