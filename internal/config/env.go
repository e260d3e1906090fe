package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides holds settings taken from REPWATCH_* variables.
type EnvOverrides struct {
	URL         *string `env:"REPWATCH_URL"`
	Timeout     *string `env:"REPWATCH_TIMEOUT"`
	Mode        *string `env:"REPWATCH_MODE"`
	Poll        *string `env:"REPWATCH_POLL"`
	SummaryPoll *string `env:"REPWATCH_SUMMARY_POLL"`
}

// ParseEnv loads overrides from the process environment.
func ParseEnv() (EnvOverrides, error) {
	var out EnvOverrides
	if err := env.Parse(&out); err != nil {
		return EnvOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

// ParseEnvFrom loads overrides from the given variables.
func ParseEnvFrom(vars map[string]string) (EnvOverrides, error) {
	var out EnvOverrides
	if err := env.ParseWithOptions(&out, env.Options{Environment: vars}); err != nil {
		return EnvOverrides{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

// WithEnv returns a copy of cfg with the set overrides applied.
func (cfg FileConfig) WithEnv(o EnvOverrides) FileConfig {
	override(&cfg.Backend.URL, o.URL)
	override(&cfg.Backend.Timeout, o.Timeout)
	override(&cfg.Workout.Mode, o.Mode)
	override(&cfg.Workout.Poll, o.Poll)
	override(&cfg.Workout.SummaryPoll, o.SummaryPoll)
	return cfg
}

func override(target **string, value *string) {
	if value != nil {
		*target = value
	}
}
