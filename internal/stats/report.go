package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/verte-zerg/repwatch/internal/model"
)

const trendWindow = 3

// GoodPercentage is the share of good-posture reps, rounded to a whole percent.
func GoodPercentage(e model.ExerciseTotals) int {
	if e.TotalReps <= 0 {
		return 0
	}
	return int(math.Round(float64(e.GoodPosture) / float64(e.TotalReps) * 100))
}

// SortedModes returns map keys in display order: known modes first, then the
// rest alphabetically.
func SortedModes[V any](m map[model.Mode]V) []model.Mode {
	rank := func(mode model.Mode) int {
		for i, known := range model.Modes {
			if known == mode {
				return i
			}
		}
		return len(model.Modes)
	}
	out := make([]model.Mode, 0, len(m))
	for mode := range m {
		out = append(out, mode)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri == rj {
			return out[i] < out[j]
		}
		return ri < rj
	})
	return out
}

// RenderSummary prints the workout summary. Lines are clipped to width when
// width > 0.
func RenderSummary(w io.Writer, view model.SummaryView, width int) error {
	st := view.Stats
	if st.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d active)", st.TotalSessions, st.ActiveSessions),
		fmt.Sprintf("Total reps: %d", st.TotalReps),
		fmt.Sprintf("Avg reps/session: %d", int(math.Round(st.AverageReps))),
	}
	if cur := st.CurrentSession; cur != nil {
		lines = append(lines, fmt.Sprintf("Current: %s, %d reps", cur.Mode, value(cur.TotalReps)))
	}
	if trend := Sparkline(MovingAverage(RepSeries(view.Sessions), trendWindow), width-len("Trend: ")); trend != "" {
		lines = append(lines, "Trend: "+trend)
	}
	lines = append(lines, "")
	lines = append(lines, breakdownLines(st)...)
	return writeLines(w, clipLines(lines, width))
}

// RenderBreakdown prints the by-exercise and by-mode tables.
func RenderBreakdown(w io.Writer, st model.SummaryStatistics, width int) error {
	return writeLines(w, clipLines(breakdownLines(st), width))
}

func breakdownLines(st model.SummaryStatistics) []string {
	var lines []string
	if len(st.ByExercise) > 0 {
		lines = append(lines, "By Exercise")
		rows := make([][]string, 0, len(st.ByExercise))
		for _, mode := range SortedModes(st.ByExercise) {
			e := st.ByExercise[mode]
			rows = append(rows, []string{
				string(mode),
				fmt.Sprintf("%d", e.TotalReps),
				fmt.Sprintf("%d", e.GoodPosture),
				fmt.Sprintf("%d", e.BadPosture),
				fmt.Sprintf("%d%%", GoodPercentage(e)),
			})
		}
		lines = append(lines, textTable{headers: []string{"Exercise", "Reps", "Good", "Bad", "Good %"}, rows: rows, numeric: []int{1, 2, 3, 4}}.lines()...)
		lines = append(lines, "")
	}
	if len(st.ByMode) > 0 {
		lines = append(lines, "By Mode")
		rows := make([][]string, 0, len(st.ByMode))
		for _, mode := range SortedModes(st.ByMode) {
			m := st.ByMode[mode]
			rows = append(rows, []string{string(mode), fmt.Sprintf("%d", m.TotalReps), fmt.Sprintf("%d", m.Sessions)})
		}
		lines = append(lines, textTable{headers: []string{"Mode", "Reps", "Sessions"}, rows: rows, numeric: []int{1, 2}}.lines()...)
	}
	return lines
}

// HistoryRows formats one table row per session.
func HistoryRows(sessions []model.SessionRecord) (headers []string, rows [][]string) {
	headers = []string{"ID", "Mode", "Started", "Reps", "Posture", "Duration", ""}
	rows = make([][]string, 0, len(sessions))
	for _, s := range sessions {
		started := "-"
		if t, ok := s.Started(); ok {
			started = t.Format("2006-01-02 15:04")
		}
		active := ""
		if s.IsActive {
			active = "active"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ID),
			string(s.Mode),
			started,
			fmt.Sprintf("%d", value(s.TotalReps)),
			PostureLabel(s),
			s.DurationLabel(),
			active,
		})
	}
	return headers, rows
}

// PostureLabel renders the mode-specific posture counters of a session.
func PostureLabel(s model.SessionRecord) string {
	switch s.Mode {
	case model.ModePushUp:
		return fmt.Sprintf("good %d / bad %d", value(s.PushUpGoodPosture), value(s.PushUpBadPosture))
	case model.ModeCurl:
		return fmt.Sprintf("R %d/%d  L %d/%d", value(s.CurlRGoodPosture), value(s.CurlRBadPosture), value(s.CurlLGoodPosture), value(s.CurlLBadPosture))
	case model.ModeSquat:
		return fmt.Sprintf("good %d / bad %d", value(s.SquatGoodPosture), value(s.SquatBadPosture))
	case model.ModePlank:
		return fmt.Sprintf("good %ds / bad %ds", value(s.PlankGoodPostureTime), value(s.PlankBadPostureTime))
	}
	return "-"
}

// RenderHistory prints one line per session.
func RenderHistory(w io.Writer, sessions []model.SessionRecord, width int) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers, rows := HistoryRows(sessions)
	lines := append([]string{"History"}, textTable{headers: headers, rows: rows, numeric: []int{0, 3}}.lines()...)
	return writeLines(w, clipLines(lines, width))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
