// Package statsui provides the Bubble Tea results interface.
package statsui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/repwatch/internal/model"
	"github.com/verte-zerg/repwatch/internal/stats"
)

const (
	tabSummary = iota
	tabHistory
)

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
	cardNoteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// SummaryMsg carries a new summary snapshot into the program.
type SummaryMsg model.SummaryView

// Model implements the Bubble Tea results UI.
type Model struct {
	baseURL string

	view   model.SummaryView
	loaded bool

	tabs         []string
	activeTab    int
	summaryView  viewport.Model
	historyTable table.Model
	tableLayout  tableLayout

	width  int
	height int
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a results UI model for the service at baseURL.
func NewModel(baseURL string) *Model {
	m := &Model{
		baseURL:     baseURL,
		tabs:        []string{"Summary", "History"},
		summaryView: viewport.New(0, 0),
	}
	m.historyTable = buildHistoryTable(nil, 0, 1)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
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
	case SummaryMsg:
		m.view = model.SummaryView(msg)
		m.loaded = true
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.summaryView.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.summaryView.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabHistory {
				m.historyTable, cmd = m.historyTable.Update(msg)
			} else {
				m.summaryView, cmd = m.summaryView.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.view.Err != nil {
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
	m.summaryView.Width = m.width
	m.summaryView.Height = bodyHeight
	m.setTableSize(m.width, bodyHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	updated := "waiting for first refresh"
	if !m.view.UpdatedAt.IsZero() {
		updated = "updated " + m.view.UpdatedAt.Format("15:04:05")
	}
	line := truncateLine(fmt.Sprintf("Service: %s  %s", m.baseURL, updated), m.width)
	return tabs + "\n" + padLines(headerStyle.Render(line), m.width)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q")
	if m.view.Err != nil {
		msg := truncateLine(fmt.Sprintf("Failed to refresh sessions: %v", m.view.Err), m.width)
		return help + "\n" + errorStyle.Render(msg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if !m.loaded {
		return fitLines("Loading sessions...", m.width, height)
	}
	if m.activeTab == tabHistory {
		if len(m.view.Sessions) == 0 {
			return fitLines("No sessions found.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.historyTable.View()), m.width, height)
	}
	return fitLines(m.summaryView.View(), m.width, height)
}

func (m *Model) renderContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.summaryView.SetContent(renderSummary(m.view, width))
	_, bodyHeight, _ := m.layoutHeights()
	m.applyHistory(width, bodyHeight)
}

func renderSummary(view model.SummaryView, width int) string {
	st := view.Stats
	if st.TotalSessions == 0 {
		return "No sessions found."
	}
	parts := []string{renderSummaryCards(st, width)}
	var buf bytes.Buffer
	if err := stats.RenderBreakdown(&buf, st, width); err != nil {
		parts = append(parts, fmt.Sprintf("Failed to render breakdown: %v", err))
	} else if out := strings.TrimRight(buf.String(), "\n"); out != "" {
		parts = append(parts, out)
	}
	if extra := renderExtra(view.Extra, width); extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "\n\n")
}

func renderSummaryCards(st model.SummaryStatistics, width int) string {
	current := "None"
	currentNote := ""
	if cur := st.CurrentSession; cur != nil {
		current = string(cur.Mode)
		reps := 0
		if cur.TotalReps != nil {
			reps = *cur.TotalReps
		}
		currentNote = fmt.Sprintf("%d reps", reps)
	}
	activeNote := ""
	if st.ActiveSessions > 0 {
		activeNote = fmt.Sprintf("%d Active", st.ActiveSessions)
	}
	cards := []string{
		metricCard("Total Sessions", fmt.Sprintf("%d", st.TotalSessions), activeNote),
		metricCard("Total Reps", fmt.Sprintf("%d", st.TotalReps), fmt.Sprintf("Avg %d / session", int(math.Round(st.AverageReps)))),
		metricCard("Current Session", current, currentNote),
	}
	if width < 60 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value, note string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	if note != "" {
		content += "\n" + cardNoteStyle.Render(note)
	}
	return cardStyle.Render(content)
}

func renderExtra(extra map[string]json.RawMessage, width int) string {
	if len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{"Service"}
	for _, k := range keys {
		lines = append(lines, truncateLine(fmt.Sprintf("%s: %s", k, strings.TrimSpace(string(extra[k]))), width))
	}
	return strings.Join(lines, "\n")
}

func buildHistoryTable(sessions []model.SessionRecord, width, height int) table.Model {
	cols, rows := buildHistoryData(sessions)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(historyTableStyles())
	return t
}

func buildHistoryData(sessions []model.SessionRecord) ([]table.Column, []table.Row) {
	headers, cells := stats.HistoryRows(sessions)
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: lipgloss.Width(h)}
	}
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		for c, cell := range row {
			if w := lipgloss.Width(cell); w > columns[c].Width {
				columns[c].Width = w
			}
		}
		rows[i] = table.Row(row)
	}
	return columns, rows
}

func (m *Model) applyHistory(width, height int) {
	cols, rows := buildHistoryData(m.view.Sessions)
	m.historyTable.SetColumns(cols)
	m.historyTable.SetRows(rows)
	if m.tableLayout.rowCount != len(rows) {
		m.tableLayout.rowCount = len(rows)
		m.tableLayout.width = 0
	}
	m.setTableSize(width, height)
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.historyTable.SetWidth(width)
	m.historyTable.SetHeight(viewportHeight)
	if adjusted := m.adjustTableHeight(height); adjusted != viewportHeight {
		m.tableLayout.height = adjusted
		m.historyTable.SetHeight(adjusted)
	}
}

func historyTableStyles() table.Styles {
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

func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.historyTable.Height()
	viewHeight := lipgloss.Height(m.historyTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.historyTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.historyTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
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

// truncateLine clips s to width display cells.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
