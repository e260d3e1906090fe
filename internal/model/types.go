// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the exercise currently being tracked.
type Mode string

// Known modes. ModeUnknown is only used as an aggregation key.
const (
	ModePushUp  Mode = "Push-Up"
	ModeCurl    Mode = "Curl"
	ModeSquat   Mode = "Squat"
	ModePlank   Mode = "Plank"
	ModeUnknown Mode = "Unknown"
)

// Modes lists the trackable modes in display order.
var Modes = []Mode{ModePushUp, ModeCurl, ModeSquat, ModePlank}

// Valid reports whether m is one of the trackable modes.
func (m Mode) Valid() bool {
	switch m {
	case ModePushUp, ModeCurl, ModeSquat, ModePlank:
		return true
	}
	return false
}

// Shift returns the mode delta positions away, wrapping around.
func (m Mode) Shift(delta int) Mode {
	idx := 0
	for i, mode := range Modes {
		if mode == m {
			idx = i
			break
		}
	}
	n := len(Modes)
	return Modes[((idx+delta)%n+n)%n]
}

// ParseMode resolves a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "push-up", "pushup", "push_up":
		return ModePushUp, nil
	case "curl":
		return ModeCurl, nil
	case "squat":
		return ModeSquat, nil
	case "plank":
		return ModePlank, nil
	}
	return "", fmt.Errorf("unknown mode %q (available: Push-Up, Curl, Squat, Plank)", s)
}

// Stage is a coarse repetition phase label.
type Stage string

// Known stages. Any other value is neutral.
const (
	StageUp   Stage = "up"
	StageDown Stage = "down"
)

// Config defines live workout settings.
type Config struct {
	BaseURL         string
	Mode            Mode
	PollInterval    time.Duration
	SummaryInterval time.Duration
	Timeout         time.Duration
}

// DerivedLiveState is the live view snapshot rebuilt on every fast poll.
type DerivedLiveState struct {
	Mode         Mode
	DisplayValue float64
	Count        int
	Feedback     string
	Connected    bool
	UpdatedAt    time.Time
}

// LiveReading is the state machine output for one frame.
type LiveReading struct {
	Mode         Mode
	DisplayValue float64
	Count        int
	Feedback     string
}
