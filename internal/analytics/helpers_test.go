package analytics

import (
	"math"
	"time"

	"trade-journal/internal/models"
)

func testOptions(now time.Time) Options {
	return Options{
		Location:        time.UTC,
		WeekNumbering:   WeekNumberingLegacy,
		BreachTolerance: DefaultBreachTolerance,
		RecencyDays:     DefaultRecencyDays,
		Now:             func() time.Time { return now },
	}
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 10, 0, 0, 0, time.UTC)
}

func pnl(v float64) *float64 { return models.Float(v) }

func closedTrade(id string, date time.Time, p float64) models.Trade {
	return models.Trade{
		ID:         id,
		Symbol:     "AAPL",
		Date:       date,
		Quantity:   10,
		Direction:  models.DirectionLong,
		EntryPrice: 100,
		PnLAmount:  pnl(p),
	}
}

func rrTrade(id string, dir models.Direction, entry, stop, exit float64) models.Trade {
	return models.Trade{
		ID:         id,
		Symbol:     "AAPL",
		Date:       day(2024, 1, 2),
		Quantity:   1,
		Direction:  dir,
		EntryPrice: entry,
		StopLoss:   models.Float(stop),
		ExitPrice:  models.Float(exit),
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
