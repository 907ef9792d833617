package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/analytics"
)

// periodFlags selects the reporting window. Parts left at zero are taken from
// the current period of the chosen kind.
type periodFlags struct {
	Kind  string
	Year  int
	Week  int
	Month int
	Day   int
}

func addPeriodFlags(cmd *cobra.Command, pf *periodFlags) {
	cmd.Flags().StringVar(&pf.Kind, "period", "", "period kind: lifetime, year, week or day")
	cmd.Flags().IntVar(&pf.Year, "year", 0, "year (default: current)")
	cmd.Flags().IntVar(&pf.Week, "week", 0, "week of year (default: current)")
	cmd.Flags().IntVar(&pf.Month, "month", 0, "month for a day period (default: current)")
	cmd.Flags().IntVar(&pf.Day, "day", 0, "day of month for a day period (default: current)")
}

// kind infers the period kind when --period is omitted from the most specific
// part given.
func (pf periodFlags) kind() (analytics.PeriodKind, error) {
	if pf.Kind != "" {
		return analytics.ParsePeriodKind(pf.Kind)
	}
	switch {
	case pf.Day != 0 || pf.Month != 0:
		return analytics.PeriodDay, nil
	case pf.Week != 0:
		return analytics.PeriodWeek, nil
	case pf.Year != 0:
		return analytics.PeriodYear, nil
	}
	return analytics.PeriodLifetime, nil
}

// Resolve turns the flags into a concrete period.
func (pf periodFlags) Resolve(opts analytics.Options) (analytics.Period, error) {
	kind, err := pf.kind()
	if err != nil {
		return analytics.Period{}, err
	}

	p := analytics.CurrentPeriod(kind, opts)
	if pf.Year != 0 && kind != analytics.PeriodLifetime {
		p.Year = pf.Year
	}

	switch kind {
	case analytics.PeriodWeek:
		if pf.Week != 0 {
			p.Week = pf.Week
		}
		if last := analytics.WeeksInYear(p.Year, opts); p.Week < 1 || p.Week > last {
			return analytics.Period{}, fmt.Errorf("invalid week %d: %d has weeks 1 to %d", p.Week, p.Year, last)
		}
	case analytics.PeriodDay:
		if pf.Month != 0 {
			p.Month = pf.Month
		}
		if pf.Day != 0 {
			p.Day = pf.Day
		}
		if p.Month < 1 || p.Month > 12 {
			return analytics.Period{}, fmt.Errorf("invalid month %d: must be between 1 and 12", p.Month)
		}
		d := time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
		if p.Day < 1 || d.Day() != p.Day {
			return analytics.Period{}, fmt.Errorf("invalid day %04d-%02d-%02d", p.Year, p.Month, p.Day)
		}
	}

	return p, nil
}
