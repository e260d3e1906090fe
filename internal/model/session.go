package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionRecord is one workout session as reported by the service.
type SessionRecord struct {
	ID        int64   `json:"id"`
	Mode      Mode    `json:"mode"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time"`
	IsActive  bool    `json:"is_active"`
	TotalReps *int    `json:"total_reps"`

	PushUpCount       *int `json:"pushup_count"`
	PushUpGoodPosture *int `json:"pushup_good_posture"`
	PushUpBadPosture  *int `json:"pushup_bad_posture"`

	CurlCountR       *int `json:"curl_count_r"`
	CurlCountL       *int `json:"curl_count_l"`
	CurlRGoodPosture *int `json:"curl_r_good_posture"`
	CurlRBadPosture  *int `json:"curl_r_bad_posture"`
	CurlLGoodPosture *int `json:"curl_l_good_posture"`
	CurlLBadPosture  *int `json:"curl_l_bad_posture"`

	SquatCount       *int `json:"squat_count"`
	SquatGoodPosture *int `json:"squat_good_posture"`
	SquatBadPosture  *int `json:"squat_bad_posture"`

	PlankTime            *int `json:"plank_time"`
	PlankGoodPostureTime *int `json:"plank_good_posture_time"`
	PlankBadPostureTime  *int `json:"plank_bad_posture_time"`
}

// serviceTimeLayout is the zone-less ISO 8601 form the service emits.
const serviceTimeLayout = "2006-01-02T15:04:05.999999999"

// ParseServiceTime parses a timestamp emitted by the service.
func ParseServiceTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(serviceTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse service time %q: %w", s, err)
	}
	return t, nil
}

// Started returns the parsed start time.
func (r SessionRecord) Started() (time.Time, bool) {
	if r.StartTime == "" {
		return time.Time{}, false
	}
	t, err := ParseServiceTime(r.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Ended returns the parsed end time; false while the session is open.
func (r SessionRecord) Ended() (time.Time, bool) {
	if r.EndTime == nil || *r.EndTime == "" {
		return time.Time{}, false
	}
	t, err := ParseServiceTime(*r.EndTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DurationLabel renders the session length as "<m>m <s>s".
func (r SessionRecord) DurationLabel() string {
	start, ok := r.Started()
	if !ok {
		return "Ongoing"
	}
	end, ok := r.Ended()
	if !ok {
		return "Active"
	}
	secs := int(end.Sub(start) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// ModeTotals is one by_mode entry.
type ModeTotals struct {
	TotalReps int `json:"total_reps"`
	Sessions  int `json:"sessions"`
}

// ExerciseTotals is one by_exercise entry.
type ExerciseTotals struct {
	TotalReps   int `json:"total_reps"`
	GoodPosture int `json:"good_posture"`
	BadPosture  int `json:"bad_posture"`
}

// SummaryStatistics is derived from a session list on every refresh.
type SummaryStatistics struct {
	TotalSessions  int                     `json:"total_sessions"`
	TotalReps      int                     `json:"total_reps"`
	AverageReps    float64                 `json:"average_reps"`
	ActiveSessions int                     `json:"active_sessions"`
	CurrentSession *SessionRecord          `json:"current_session"`
	ByMode         map[Mode]ModeTotals     `json:"by_mode"`
	ByExercise     map[Mode]ExerciseTotals `json:"by_exercise"`
}

// SummaryView is the published result of one slow poll.
type SummaryView struct {
	Stats    SummaryStatistics
	Sessions []SessionRecord
	// Extra holds backend summary keys the derived statistics do not cover.
	Extra     map[string]json.RawMessage
	Err       error
	UpdatedAt time.Time
}
