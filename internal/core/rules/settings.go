package rules

import (
	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/ledger"
	"github.com/charleschow/courtside/internal/telemetry"
)

const (
	DefaultPeriodCount    = 4
	DefaultPeriodDuration = "10:00"
	DefaultPeriodSeconds  = 600
	DefaultTimeouts       = 3
)

// MatchConfig is the resolved, always-valid configuration a session runs with.
type MatchConfig struct {
	PeriodCount   int `json:"period_count"`
	PeriodSeconds int `json:"period_seconds"`
	Timeouts      int `json:"timeouts"`
	FoulLimit     int `json:"foul_limit"`
}

func Default() MatchConfig {
	return MatchConfig{
		PeriodCount:   DefaultPeriodCount,
		PeriodSeconds: DefaultPeriodSeconds,
		Timeouts:      DefaultTimeouts,
		FoulLimit:     ledger.DefaultFoulLimit,
	}
}

// Settings is what the user typed into the sport settings form. Fields may be
// missing or malformed; Resolve turns them into a MatchConfig.
//
// The break, overtime, chrono and display blocks are stored with the sport so
// they survive round trips, but the session does not run them.
type Settings struct {
	PeriodCount    int      `json:"period_count,omitempty" yaml:"period_count,omitempty"`
	PeriodDuration string   `json:"period_duration,omitempty" yaml:"period_duration,omitempty"`
	Timeouts       *int     `json:"timeouts,omitempty" yaml:"timeouts,omitempty"`
	FoulLimit      int      `json:"foul_limit,omitempty" yaml:"foul_limit,omitempty"`
	PreMatchTimer  string   `json:"pre_match_timer,omitempty" yaml:"pre_match_timer,omitempty"`
	OvertimeTimer  string   `json:"overtime_timer,omitempty" yaml:"overtime_timer,omitempty"`
	BreakTimes     *Breaks  `json:"break_times,omitempty" yaml:"break_times,omitempty"`
	Chronos        *Chronos `json:"chronos,omitempty" yaml:"chronos,omitempty"`
	Display        *Display `json:"display,omitempty" yaml:"display,omitempty"`
}

type Breaks struct {
	Main           string `json:"main" yaml:"main"`
	Secondary      string `json:"secondary" yaml:"secondary"`
	BeforeOvertime string `json:"before_overtime" yaml:"before_overtime"`
}

// Chronos describes the secondary shot clocks (e.g. 24/14 in basketball).
type Chronos struct {
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	Countdown bool      `json:"countdown" yaml:"countdown"`
	Durations [2]string `json:"durations" yaml:"durations"`
}

type Display struct {
	ShowRedSquare bool `json:"show_red_square" yaml:"show_red_square"`
}

// Resolve applies documented fallbacks to every malformed field. It never
// fails: match setup must not be blocked by a typo in the settings form.
func (s Settings) Resolve() MatchConfig {
	cfg := Default()

	if s.PeriodCount > 0 {
		cfg.PeriodCount = s.PeriodCount
	} else if s.PeriodCount < 0 {
		telemetry.Warnf("rules: period count %d invalid, using %d", s.PeriodCount, DefaultPeriodCount)
	}

	if s.PeriodDuration != "" {
		secs, err := clock.ParseDuration(s.PeriodDuration)
		switch {
		case err != nil:
			telemetry.Warnf("rules: %v, using %s", err, DefaultPeriodDuration)
		case secs <= 0:
			telemetry.Warnf("rules: period duration %q is empty, using %s", s.PeriodDuration, DefaultPeriodDuration)
		case secs > clock.MaxDisplaySeconds:
			telemetry.Warnf("rules: period duration %q exceeds 99:59, capping", s.PeriodDuration)
			cfg.PeriodSeconds = clock.MaxDisplaySeconds
		default:
			cfg.PeriodSeconds = secs
		}
	}

	if s.Timeouts != nil {
		if *s.Timeouts >= 0 {
			cfg.Timeouts = *s.Timeouts
		} else {
			telemetry.Warnf("rules: timeout allowance %d invalid, using %d", *s.Timeouts, DefaultTimeouts)
		}
	}

	if s.FoulLimit > 0 {
		cfg.FoulLimit = s.FoulLimit
	}

	return cfg
}

// Merge returns s with every field that override sets replacing the stored value.
func (s Settings) Merge(override *Settings) Settings {
	if override == nil {
		return s
	}
	out := s
	if override.PeriodCount != 0 {
		out.PeriodCount = override.PeriodCount
	}
	if override.PeriodDuration != "" {
		out.PeriodDuration = override.PeriodDuration
	}
	if override.Timeouts != nil {
		v := *override.Timeouts
		out.Timeouts = &v
	}
	if override.FoulLimit != 0 {
		out.FoulLimit = override.FoulLimit
	}
	if override.PreMatchTimer != "" {
		out.PreMatchTimer = override.PreMatchTimer
	}
	if override.OvertimeTimer != "" {
		out.OvertimeTimer = override.OvertimeTimer
	}
	if override.BreakTimes != nil {
		out.BreakTimes = override.BreakTimes
	}
	if override.Chronos != nil {
		out.Chronos = override.Chronos
	}
	if override.Display != nil {
		out.Display = override.Display
	}
	return out
}

// IntPtr is a small helper for building Settings literals.
func IntPtr(v int) *int { return &v }
