package model

// TelemetryFrame is one /pose_data response. Absent fields stay nil.
type TelemetryFrame struct {
	Mode *Mode `json:"mode"`

	ElbowAngle  *float64 `json:"elbow_angle"`
	ElbowAngleR *float64 `json:"elbow_angle_r"`
	ElbowAngleL *float64 `json:"elbow_angle_l"`
	KneeAngle   *float64 `json:"knee_angle"`
	PlankTime   *int     `json:"plank_time"`

	PushUpStage *Stage `json:"pushup_stage"`
	CurlStageR  *Stage `json:"curl_stage_r"`
	CurlStageL  *Stage `json:"curl_stage_l"`
	SquatStage  *Stage `json:"squat_stage"`

	PushUpCount *int `json:"pushup_count"`
	CurlCountR  *int `json:"curl_count_r"`
	CurlCountL  *int `json:"curl_count_l"`
	SquatCount  *int `json:"squat_count"`

	PushUpGoodPosture    *int `json:"pushup_good_posture"`
	PushUpBadPosture     *int `json:"pushup_bad_posture"`
	CurlRGoodPosture     *int `json:"curl_r_good_posture"`
	CurlRBadPosture      *int `json:"curl_r_bad_posture"`
	CurlLGoodPosture     *int `json:"curl_l_good_posture"`
	CurlLBadPosture      *int `json:"curl_l_bad_posture"`
	SquatGoodPosture     *int `json:"squat_good_posture"`
	SquatBadPosture      *int `json:"squat_bad_posture"`
	PlankGoodPostureTime *int `json:"plank_good_posture_time"`
	PlankBadPostureTime  *int `json:"plank_bad_posture_time"`
}

// Reading is a frame projected onto a single mode. The concrete types are
// PushUpReading, CurlReading, SquatReading and PlankReading.
type Reading interface {
	Mode() Mode
	// Empty reports that none of the mode's fields were present.
	Empty() bool
}

// PushUpReading carries the push-up fields of a frame.
type PushUpReading struct {
	ElbowAngle *float64
	Count      *int
	Stage      *Stage
}

// Mode implements Reading.
func (PushUpReading) Mode() Mode { return ModePushUp }

// Empty implements Reading.
func (r PushUpReading) Empty() bool {
	return r.ElbowAngle == nil && r.Count == nil && r.Stage == nil
}

// CurlReading carries the per-arm curl fields of a frame.
type CurlReading struct {
	ElbowAngle *float64
	RightCount *int
	LeftCount  *int
	RightStage *Stage
	LeftStage  *Stage
}

// Mode implements Reading.
func (CurlReading) Mode() Mode { return ModeCurl }

// Empty implements Reading.
func (r CurlReading) Empty() bool {
	return r.ElbowAngle == nil && r.RightCount == nil && r.LeftCount == nil &&
		r.RightStage == nil && r.LeftStage == nil
}

// SquatReading carries the squat fields of a frame.
type SquatReading struct {
	KneeAngle *float64
	Count     *int
	Stage     *Stage
}

// Mode implements Reading.
func (SquatReading) Mode() Mode { return ModeSquat }

// Empty implements Reading.
func (r SquatReading) Empty() bool {
	return r.KneeAngle == nil && r.Count == nil && r.Stage == nil
}

// PlankReading carries the elapsed plank time of a frame.
type PlankReading struct {
	Seconds *int
}

// Mode implements Reading.
func (PlankReading) Mode() Mode { return ModePlank }

// Empty implements Reading.
func (r PlankReading) Empty() bool { return r.Seconds == nil }

// Reading projects the frame onto mode. It returns nil for modes that are not
// trackable.
func (f TelemetryFrame) Reading(mode Mode) Reading {
	switch mode {
	case ModePushUp:
		return PushUpReading{ElbowAngle: f.ElbowAngle, Count: f.PushUpCount, Stage: f.PushUpStage}
	case ModeCurl:
		return CurlReading{
			ElbowAngle: f.ElbowAngle,
			RightCount: f.CurlCountR,
			LeftCount:  f.CurlCountL,
			RightStage: f.CurlStageR,
			LeftStage:  f.CurlStageL,
		}
	case ModeSquat:
		return SquatReading{KneeAngle: f.KneeAngle, Count: f.SquatCount, Stage: f.SquatStage}
	case ModePlank:
		return PlankReading{Seconds: f.PlankTime}
	}
	return nil
}
