// Package feedback maps raw telemetry frames to rep counts and feedback labels.
package feedback

import (
	"fmt"

	"github.com/verte-zerg/repwatch/internal/model"
)

// Labels shown for the rep-based modes.
const (
	GoodPosture = "Good posture"
	GoLower     = "Go lower"
	PushUp      = "Push up"
	StandUp     = "Stand up"
	CurlUp      = "Curl"
	SlowDown    = "Slow down"
	StartPlank  = "Start plank position"
)

// Evaluate converts one frame into a live reading. The frame's own mode wins
// over selected when present. It returns false when the frame carries none of
// the active mode's fields.
func Evaluate(selected model.Mode, frame model.TelemetryFrame) (model.LiveReading, bool) {
	mode := selected
	if frame.Mode != nil && *frame.Mode != "" {
		mode = *frame.Mode
	}
	reading := frame.Reading(mode)
	if reading == nil || reading.Empty() {
		return model.LiveReading{}, false
	}
	return FromReading(reading), true
}

// FromReading applies the per-mode rules to a projected reading.
func FromReading(reading model.Reading) model.LiveReading {
	switch r := reading.(type) {
	case model.PushUpReading:
		return model.LiveReading{
			Mode:         model.ModePushUp,
			DisplayValue: floatOrZero(r.ElbowAngle),
			Count:        intOrZero(r.Count),
			Feedback:     stageLabel(r.Stage, PushUp, GoLower),
		}
	case model.CurlReading:
		right := stageLabel(r.RightStage, CurlUp, SlowDown)
		left := stageLabel(r.LeftStage, CurlUp, SlowDown)
		label := right
		if right != left {
			label = right + " / " + left
		}
		return model.LiveReading{
			Mode:         model.ModeCurl,
			DisplayValue: floatOrZero(r.ElbowAngle),
			Count:        intOrZero(r.RightCount) + intOrZero(r.LeftCount),
			Feedback:     label,
		}
	case model.SquatReading:
		return model.LiveReading{
			Mode:         model.ModeSquat,
			DisplayValue: floatOrZero(r.KneeAngle),
			Count:        intOrZero(r.Count),
			Feedback:     stageLabel(r.Stage, StandUp, GoLower),
		}
	case model.PlankReading:
		secs := intOrZero(r.Seconds)
		return model.LiveReading{
			Mode:         model.ModePlank,
			DisplayValue: float64(secs),
			Count:        secs,
			Feedback:     plankLabel(secs),
		}
	}
	return model.LiveReading{Mode: reading.Mode(), Feedback: GoodPosture}
}

func stageLabel(stage *model.Stage, up, down string) string {
	if stage == nil {
		return GoodPosture
	}
	switch *stage {
	case model.StageUp:
		return up
	case model.StageDown:
		return down
	}
	return GoodPosture
}

func plankLabel(secs int) string {
	if secs > 0 {
		return fmt.Sprintf("Hold steady (%ds)", secs)
	}
	return StartPlank
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
