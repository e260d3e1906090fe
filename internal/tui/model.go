// Package tui provides the Bubble Tea live workout interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/repwatch/internal/lifecycle"
	"github.com/verte-zerg/repwatch/internal/model"
)

// LiveMsg carries a new live snapshot into the program.
type LiveMsg model.DerivedLiveState

// SummaryMsg carries a new summary snapshot into the program.
type SummaryMsg model.SummaryView

type modeSentMsg lifecycle.Result

// ModeSwitcher receives mode selections. Select is called from the update
// loop in key order; Flush runs in a command and announces the latest
// selection.
type ModeSwitcher interface {
	Select(mode model.Mode) bool
	Flush(ctx context.Context) lifecycle.Result
}

// Model implements the Bubble Tea live workout UI.
type Model struct {
	selected   model.Mode
	live       model.DerivedLiveState
	summary    model.SummaryView
	hasSummary bool
	switcher   ModeSwitcher
	notice     string

	width  int
	height int
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	feedbackCardStyle = cardStyle.BorderForeground(lipgloss.Color("#C89A3A"))
	cardTitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	onlineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	offlineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a live workout model showing the given snapshot.
func NewModel(selected model.Mode, live model.DerivedLiveState, switcher ModeSwitcher) *Model {
	return &Model{
		selected: selected,
		live:     live,
		switcher: switcher,
	}
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
		return m, nil
	case LiveMsg:
		m.live = model.DerivedLiveState(msg)
		return m, nil
	case SummaryMsg:
		m.summary = model.SummaryView(msg)
		m.hasSummary = true
		return m, nil
	case modeSentMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("set mode %s failed: %v", msg.Mode, msg.Err)
		} else if !msg.Skipped {
			m.notice = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch key := msg.String(); key {
		case "left", "h":
			return m, m.selectMode(m.selected.Shift(-1))
		case "right", "l":
			return m, m.selectMode(m.selected.Shift(1))
		case "1", "2", "3", "4":
			return m, m.selectMode(model.Modes[int(key[0]-'1')])
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	tabs := m.renderTabs()
	content := lipgloss.JoinVertical(lipgloss.Center, m.renderCards(), m.renderFeedback())
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{tabs, content, footer}, "\n")
	}
	tabsHeight := lipgloss.Height(tabs)
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - tabsHeight - footerHeight
	if bodyHeight < lipgloss.Height(content) {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	header := lipgloss.Place(m.width, tabsHeight, lipgloss.Center, lipgloss.Top, tabs)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Bottom, footer)
	return header + "\n" + body + "\n" + footerLine
}

func (m *Model) selectMode(next model.Mode) tea.Cmd {
	if next == m.selected {
		return nil
	}
	m.selected = next
	if m.switcher == nil || !m.switcher.Select(next) {
		return nil
	}
	switcher := m.switcher
	return func() tea.Msg {
		return modeSentMsg(switcher.Flush(context.Background()))
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(model.Modes))
	for i, mode := range model.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode)
		if mode == m.selected {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderCards() string {
	mode := m.selected
	return lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard(metricLabel(mode), formatMetric(mode, m.live.DisplayValue)),
		metricCard(countLabel(mode), fmt.Sprintf("%d", m.live.Count)),
	)
}

func (m *Model) renderFeedback() string {
	text := m.live.Feedback
	if text == "" {
		text = "-"
	}
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render("Feedback"), cardValueStyle.Render(text))
	return feedbackCardStyle.Render(content)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func metricLabel(mode model.Mode) string {
	switch mode {
	case model.ModePlank:
		return "Time"
	case model.ModeSquat:
		return "Knee Angle"
	}
	return "Elbow Angle"
}

func countLabel(mode model.Mode) string {
	if mode == model.ModePlank {
		return "Time (seconds)"
	}
	return "Reps Count"
}

func formatMetric(mode model.Mode, v float64) string {
	if mode == model.ModePlank {
		return fmt.Sprintf("%.0fs", v)
	}
	return fmt.Sprintf("%.0f°", v)
}

func (m *Model) renderFooter() string {
	status := offlineStyle.Render("Disconnected")
	if m.live.Connected {
		status = onlineStyle.Render("Connected")
	}
	segments := []string{status}
	if m.hasSummary {
		st := m.summary.Stats
		segments = append(segments, fmt.Sprintf("Sessions %d · Reps %d · Active %d", st.TotalSessions, st.TotalReps, st.ActiveSessions))
		if m.summary.Err != nil {
			segments = append(segments, "summary stale")
		}
	}
	segments = append(segments, "Mode: ←/→ or 1-4  Quit: q")
	line := footerStyle.Render(strings.Join(segments, "  "))
	if m.notice != "" {
		return line + "\n" + offlineStyle.Render(m.notice)
	}
	return line
}
