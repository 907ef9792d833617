// Package analytics aggregates journaled trades into the statistics rendered
// by the reporting views: P&L, win rate, expectancy, risk:reward, streaks,
// groupings, psychology and period-over-period deltas.
//
// Every function here is a pure computation over an in-memory slice of trades.
// Inputs are never mutated, so snapshots for different periods can be built
// concurrently without coordination.
package analytics

import (
	"fmt"
	"time"
)

// WeekNumbering selects how a date maps to a week-of-year.
type WeekNumbering string

const (
	// WeekNumberingLegacy numbers weeks as ceil((dayOfYear0 + jan1Weekday + 1) / 7).
	// Weeks start on Sunday and Jan 1 is always week 1. Not ISO-8601.
	WeekNumberingLegacy WeekNumbering = "legacy"
	// WeekNumberingISO uses ISO-8601 weeks (Monday start, ISO year).
	WeekNumberingISO WeekNumbering = "iso"
)

// ParseWeekNumbering parses a configured week numbering mode.
func ParseWeekNumbering(s string) (WeekNumbering, error) {
	switch WeekNumbering(s) {
	case WeekNumberingLegacy, "":
		return WeekNumberingLegacy, nil
	case WeekNumberingISO:
		return WeekNumberingISO, nil
	}
	return "", fmt.Errorf("unknown week numbering %q (must be 'legacy' or 'iso')", s)
}

// DefaultBreachTolerance allows 5% slippage beyond the planned risk amount
// before a losing trade counts as a risk breach.
const DefaultBreachTolerance = 1.05

// DefaultRecencyDays is how many days back the last trading day may be for a
// day streak to still count as current (0 = today only, 1 = today or yesterday).
const DefaultRecencyDays = 1

// Options holds the policy knobs of the engine.
type Options struct {
	Location        *time.Location
	WeekNumbering   WeekNumbering
	BreachTolerance float64
	RecencyDays     int
	Now             func() time.Time
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		Location:        time.Local,
		WeekNumbering:   WeekNumberingLegacy,
		BreachTolerance: DefaultBreachTolerance,
		RecencyDays:     DefaultRecencyDays,
		Now:             time.Now,
	}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now().In(o.location())
	}
	return o.Now().In(o.location())
}

func (o Options) tolerance() float64 {
	if o.BreachTolerance <= 0 {
		return DefaultBreachTolerance
	}
	return o.BreachTolerance
}

func (o Options) recencyDays() int {
	if o.RecencyDays < 0 {
		return DefaultRecencyDays
	}
	return o.RecencyDays
}
