package analytics

import (
	"fmt"
	"strings"
	"time"

	"trade-journal/internal/models"
)

// PeriodKind identifies the granularity of a reporting period.
type PeriodKind string

const (
	PeriodLifetime PeriodKind = "lifetime"
	PeriodYear     PeriodKind = "year"
	PeriodWeek     PeriodKind = "week"
	PeriodDay      PeriodKind = "day"
)

// ParsePeriodKind parses a period kind name.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch k := PeriodKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PeriodLifetime, PeriodYear, PeriodWeek, PeriodDay:
		return k, nil
	case "":
		return PeriodLifetime, nil
	}
	return "", fmt.Errorf("unknown period %q (must be lifetime, year, week or day)", s)
}

// Period describes a reporting window. Only the fields relevant to Kind are read.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Year  int        `json:"year,omitempty"`
	Week  int        `json:"week,omitempty"`
	Month int        `json:"month,omitempty"`
	Day   int        `json:"day,omitempty"`
}

// Lifetime returns the unbounded period.
func Lifetime() Period { return Period{Kind: PeriodLifetime} }

// YearPeriod returns the calendar year period.
func YearPeriod(year int) Period { return Period{Kind: PeriodYear, Year: year} }

// WeekPeriod returns the given week of year.
func WeekPeriod(year, week int) Period { return Period{Kind: PeriodWeek, Year: year, Week: week} }

// DayPeriod returns a single calendar day.
func DayPeriod(year, month, day int) Period {
	return Period{Kind: PeriodDay, Year: year, Month: month, Day: day}
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodYear:
		return fmt.Sprintf("%d", p.Year)
	case PeriodWeek:
		return fmt.Sprintf("%d-W%02d", p.Year, p.Week)
	case PeriodDay:
		return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
	case PeriodLifetime:
		return "lifetime"
	}
	return string(p.Kind)
}

// Contains reports whether t falls in the period.
func (p Period) Contains(t time.Time, opts Options) bool {
	t = t.In(opts.location())
	switch p.Kind {
	case PeriodLifetime:
		return true
	case PeriodYear:
		return t.Year() == p.Year
	case PeriodWeek:
		year, week := WeekNumber(t, opts.WeekNumbering)
		return year == p.Year && week == p.Week
	case PeriodDay:
		return t.Year() == p.Year && int(t.Month()) == p.Month && t.Day() == p.Day
	}
	return false
}

// Previous returns the period of the same kind immediately before p.
// Lifetime has no predecessor.
func (p Period) Previous(opts Options) (Period, bool) {
	switch p.Kind {
	case PeriodYear:
		return YearPeriod(p.Year - 1), true
	case PeriodWeek:
		if p.Week > 1 {
			return WeekPeriod(p.Year, p.Week-1), true
		}
		return WeekPeriod(p.Year-1, WeeksInYear(p.Year-1, opts)), true
	case PeriodDay:
		d := time.Date(p.Year, time.Month(p.Month), p.Day-1, 12, 0, 0, 0, opts.location())
		return DayPeriod(d.Year(), int(d.Month()), d.Day()), true
	}
	return Period{}, false
}

// CurrentPeriod returns the period of kind containing now.
func CurrentPeriod(kind PeriodKind, opts Options) Period {
	now := opts.now()
	switch kind {
	case PeriodYear:
		return YearPeriod(now.Year())
	case PeriodWeek:
		year, week := WeekNumber(now, opts.WeekNumbering)
		return WeekPeriod(year, week)
	case PeriodDay:
		return DayPeriod(now.Year(), int(now.Month()), now.Day())
	}
	return Lifetime()
}

// FilterPeriod returns the trades whose date falls in p, preserving order.
// A period that matches nothing yields an empty slice.
func FilterPeriod(trades []models.Trade, p Period, opts Options) []models.Trade {
	if p.Kind == PeriodLifetime {
		out := make([]models.Trade, len(trades))
		copy(out, trades)
		return out
	}
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if p.Contains(t.Date, opts) {
			out = append(out, t)
		}
	}
	return out
}

// WeekNumber returns the (year, week) pair for t under the given numbering.
// For the legacy scheme the year is the calendar year; for ISO it is the ISO year.
func WeekNumber(t time.Time, mode WeekNumbering) (int, int) {
	if mode == WeekNumberingISO {
		return t.ISOWeek()
	}
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	dayOfYear := t.YearDay() - 1
	// integer ceil of (dayOfYear + weekday + 1) / 7
	return t.Year(), (dayOfYear + int(jan1.Weekday()) + 1 + 6) / 7
}

// WeeksInYear returns the highest week number of year under the configured
// numbering: 52 or 53 for ISO, 53 or 54 for legacy (54 when a leap year
// starts on a Saturday).
func WeeksInYear(year int, opts Options) int {
	if opts.WeekNumbering == WeekNumberingISO {
		// Dec 28 is always in the last ISO week of its year.
		_, w := time.Date(year, time.December, 28, 12, 0, 0, 0, opts.location()).ISOWeek()
		return w
	}
	_, w := WeekNumber(time.Date(year, time.December, 31, 12, 0, 0, 0, opts.location()), WeekNumberingLegacy)
	return w
}
