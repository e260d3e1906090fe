package feedback

import (
	"testing"

	"github.com/verte-zerg/repwatch/internal/model"
)

func stage(s string) *model.Stage {
	st := model.Stage(s)
	return &st
}

func mode(m model.Mode) *model.Mode { return &m }

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func TestPushUpFeedback(t *testing.T) {
	cases := []struct {
		stage *model.Stage
		want  string
	}{
		{stage("down"), "Go lower"},
		{stage("up"), "Push up"},
		{nil, "Good posture"},
		{stage("sideways"), "Good posture"},
	}
	for _, tc := range cases {
		frame := model.TelemetryFrame{
			Mode:        mode(model.ModePushUp),
			ElbowAngle:  floatp(92),
			PushUpCount: intp(7),
			PushUpStage: tc.stage,
		}
		got, ok := Evaluate(model.ModePushUp, frame)
		if !ok {
			t.Fatalf("expected reading for stage %v", tc.stage)
		}
		if got.Feedback != tc.want {
			t.Fatalf("stage %v: expected %q, got %q", tc.stage, tc.want, got.Feedback)
		}
		if got.DisplayValue != 92 || got.Count != 7 {
			t.Fatalf("unexpected values: %+v", got)
		}
	}
}

func TestCurlFeedbackCombinesArms(t *testing.T) {
	frame := model.TelemetryFrame{
		Mode:       mode(model.ModeCurl),
		ElbowAngle: floatp(45),
		CurlCountR: intp(3),
		CurlStageR: stage("up"),
		CurlStageL: stage("down"),
	}
	got, ok := Evaluate(model.ModeCurl, frame)
	if !ok {
		t.Fatalf("expected reading")
	}
	if got.Feedback != "Curl / Slow down" {
		t.Fatalf("unexpected feedback %q", got.Feedback)
	}
	if got.Count != 3 {
		t.Fatalf("expected missing left count to be zero, got %d", got.Count)
	}

	frame.CurlStageL = stage("up")
	frame.CurlCountL = intp(4)
	got, _ = Evaluate(model.ModeCurl, frame)
	if got.Feedback != "Curl" {
		t.Fatalf("expected collapsed label, got %q", got.Feedback)
	}
	if got.Count != 7 {
		t.Fatalf("expected 7 reps, got %d", got.Count)
	}
}

func TestSquatFeedback(t *testing.T) {
	frame := model.TelemetryFrame{
		Mode:       mode(model.ModeSquat),
		KneeAngle:  floatp(120),
		ElbowAngle: floatp(10),
		SquatCount: intp(2),
		SquatStage: stage("up"),
	}
	got, ok := Evaluate(model.ModeSquat, frame)
	if !ok {
		t.Fatalf("expected reading")
	}
	if got.Feedback != "Stand up" || got.DisplayValue != 120 || got.Count != 2 {
		t.Fatalf("unexpected reading: %+v", got)
	}
}

func TestPlankFeedback(t *testing.T) {
	got, ok := Evaluate(model.ModePlank, model.TelemetryFrame{Mode: mode(model.ModePlank), PlankTime: intp(0)})
	if !ok {
		t.Fatalf("expected reading")
	}
	if got.Feedback != "Start plank position" {
		t.Fatalf("unexpected feedback %q", got.Feedback)
	}
	got, _ = Evaluate(model.ModePlank, model.TelemetryFrame{Mode: mode(model.ModePlank), PlankTime: intp(45)})
	if got.Feedback != "Hold steady (45s)" {
		t.Fatalf("unexpected feedback %q", got.Feedback)
	}
	if got.DisplayValue != 45 || got.Count != 45 {
		t.Fatalf("expected time in both slots, got %+v", got)
	}
}

func TestEvaluateFallsBackToSelectedMode(t *testing.T) {
	got, ok := Evaluate(model.ModeSquat, model.TelemetryFrame{SquatStage: stage("down")})
	if !ok {
		t.Fatalf("expected reading")
	}
	if got.Mode != model.ModeSquat || got.Feedback != "Go lower" {
		t.Fatalf("unexpected reading: %+v", got)
	}
}

func TestEvaluateEmptyFrame(t *testing.T) {
	if _, ok := Evaluate(model.ModePushUp, model.TelemetryFrame{}); ok {
		t.Fatalf("expected empty frame to be rejected")
	}
	// Fields of another mode do not count.
	frame := model.TelemetryFrame{Mode: mode(model.ModePlank), SquatCount: intp(3)}
	if _, ok := Evaluate(model.ModePushUp, frame); ok {
		t.Fatalf("expected plank frame without plank_time to be rejected")
	}
	if _, ok := Evaluate(model.ModePushUp, model.TelemetryFrame{Mode: mode("Jumping Jack"), PushUpCount: intp(1)}); ok {
		t.Fatalf("expected unknown mode to be rejected")
	}
}
