package statsui

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/repwatch/internal/model"
	"github.com/verte-zerg/repwatch/internal/stats"
)

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

func sampleView() model.SummaryView {
	sessions := []model.SessionRecord{
		{ID: 1, Mode: model.ModeSquat, StartTime: "2025-03-01T10:00:00", EndTime: strp("2025-03-01T10:02:05"), TotalReps: intp(12), SquatGoodPosture: intp(10), SquatBadPosture: intp(2)},
		{ID: 2, Mode: model.ModeCurl, StartTime: "2025-03-01T11:00:00", IsActive: true, TotalReps: intp(4)},
	}
	view := stats.MergeSummary(map[string]json.RawMessage{"uptime": json.RawMessage(`42`)}, sessions, time.Date(2025, 3, 1, 11, 5, 0, 0, time.Local))
	return view
}

func newSizedModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel("http://127.0.0.1:5000")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestViewBeforeFirstSummary(t *testing.T) {
	m := newSizedModel(t)
	out := m.View()
	if !strings.Contains(out, "Loading sessions...") {
		t.Fatalf("expected loading notice:\n%s", out)
	}
	if !strings.Contains(out, "waiting for first refresh") {
		t.Fatalf("expected waiting header:\n%s", out)
	}
}

func TestSummaryTabRendersCardsAndBreakdown(t *testing.T) {
	m := newSizedModel(t)
	m.Update(SummaryMsg(sampleView()))
	out := m.View()
	for _, want := range []string{
		"Total Sessions", "1 Active",
		"Total Reps", "16", "Avg 8 / session",
		"Current Session", "Curl", "4 reps",
		"By Exercise", "By Mode",
		"Service", "uptime: 42",
		"updated 11:05:00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary view missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryTabListsSessions(t *testing.T) {
	m := newSizedModel(t)
	m.Update(SummaryMsg(sampleView()))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab")
	}
	out := m.View()
	for _, want := range []string{"Mode", "Duration", "Squat", "2m 5s", "Active", "active"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history view missing %q:\n%s", want, out)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabSummary {
		t.Fatalf("expected summary tab after wrap")
	}
}

func TestRefreshErrorKeepsDataAndShowsFooter(t *testing.T) {
	m := newSizedModel(t)
	view := sampleView()
	m.Update(SummaryMsg(view))
	view.Err = errors.New("connection refused")
	m.Update(SummaryMsg(view))
	out := m.View()
	if !strings.Contains(out, "Failed to refresh sessions: connection refused") {
		t.Fatalf("expected error footer:\n%s", out)
	}
	if !strings.Contains(out, "Total Sessions") {
		t.Fatalf("expected retained summary:\n%s", out)
	}
	if got := strings.Count(out, "\n") + 1; got != 40 {
		t.Fatalf("expected view to fill 40 lines, got %d", got)
	}
}

func TestEmptySummary(t *testing.T) {
	m := newSizedModel(t)
	m.Update(SummaryMsg(stats.MergeSummary(nil, nil, time.Now())))
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty notice")
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("abc", 6); got != "abc" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateLine("uptime: 深蹲深蹲深蹲", 13); got != "uptime: 深..." {
		t.Fatalf("unexpected wide truncation %q", got)
	}
	if w := lipgloss.Width(truncateLine("http://深蹲.example:5000", 10)); w > 10 {
		t.Fatalf("truncated line is %d cells wide, want <= 10", w)
	}
}
