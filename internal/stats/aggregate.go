// Package stats contains session aggregation and reporting.
package stats

import (
	"encoding/json"
	"time"

	"github.com/verte-zerg/repwatch/internal/model"
)

// Aggregate reduces session records into summary statistics. It never
// mutates its input, and duplicate IDs are counted independently.
func Aggregate(sessions []model.SessionRecord) model.SummaryStatistics {
	out := model.SummaryStatistics{
		ByMode:     map[model.Mode]model.ModeTotals{},
		ByExercise: map[model.Mode]model.ExerciseTotals{},
	}
	if len(sessions) == 0 {
		return out
	}

	out.TotalSessions = len(sessions)
	for i := range sessions {
		s := sessions[i]
		reps := value(s.TotalReps)
		out.TotalReps += reps
		if s.IsActive {
			out.ActiveSessions++
			if out.CurrentSession == nil {
				current := s
				out.CurrentSession = &current
			}
		}

		mode := s.Mode
		if mode == "" {
			mode = model.ModeUnknown
		}

		byMode := out.ByMode[mode]
		byMode.Sessions++
		byMode.TotalReps += reps
		out.ByMode[mode] = byMode

		byExercise := out.ByExercise[mode]
		byExercise.TotalReps += reps
		good, bad := postureCounts(s)
		byExercise.GoodPosture += good
		byExercise.BadPosture += bad
		out.ByExercise[mode] = byExercise
	}
	out.AverageReps = float64(out.TotalReps) / float64(out.TotalSessions)
	return out
}

// postureCounts sums every posture counter on the record regardless of its
// mode. Absent and zero counters contribute nothing.
func postureCounts(s model.SessionRecord) (good, bad int) {
	for _, v := range []*int{s.PushUpGoodPosture, s.CurlRGoodPosture, s.CurlLGoodPosture, s.SquatGoodPosture, s.PlankGoodPostureTime} {
		if truthy(v) {
			good += *v
		}
	}
	for _, v := range []*int{s.PushUpBadPosture, s.CurlRBadPosture, s.CurlLBadPosture, s.SquatBadPosture, s.PlankBadPostureTime} {
		if truthy(v) {
			bad += *v
		}
	}
	return good, bad
}

func truthy(v *int) bool {
	return v != nil && *v != 0
}

func value(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// derivedKeys are the summary keys produced by Aggregate.
var derivedKeys = map[string]struct{}{
	"total_sessions":  {},
	"total_reps":      {},
	"average_reps":    {},
	"active_sessions": {},
	"current_session": {},
	"by_mode":         {},
	"by_exercise":     {},
}

// MergeSummary builds a summary view from the session list and an optional
// backend summary. Derived values win on key collision; backend keys outside
// the derived set are kept in Extra.
func MergeSummary(backend map[string]json.RawMessage, sessions []model.SessionRecord, now time.Time) model.SummaryView {
	view := model.SummaryView{
		Stats:     Aggregate(sessions),
		Sessions:  append([]model.SessionRecord(nil), sessions...),
		UpdatedAt: now,
	}
	for key, raw := range backend {
		if _, ok := derivedKeys[key]; ok {
			continue
		}
		if view.Extra == nil {
			view.Extra = map[string]json.RawMessage{}
		}
		view.Extra[key] = raw
	}
	return view
}
