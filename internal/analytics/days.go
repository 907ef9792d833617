package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
)

// DayPnL is the summed P&L of one calendar day.
type DayPnL struct {
	Date    time.Time      `json:"date"`
	PnL     float64        `json:"pnl"`
	Trades  int            `json:"trades"`
	Outcome models.Outcome `json:"outcome"`
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func civil(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{y, m, d}
}

func (c civilDate) at(loc *time.Location) time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, loc)
}

// daysBetween returns the whole number of calendar days from a to b.
func daysBetween(a, b civilDate) int {
	ta := time.Date(a.year, a.month, a.day, 0, 0, 0, 0, time.UTC)
	tb := time.Date(b.year, b.month, b.day, 0, 0, 0, 0, time.UTC)
	return int(tb.Sub(ta).Hours() / 24)
}

// DailyPnL collapses trades into one entry per calendar day, oldest first.
func DailyPnL(trades []models.Trade, opts Options) []DayPnL {
	loc := opts.location()
	sums := make(map[civilDate]*amount)
	counts := make(map[civilDate]int)
	keys := make([]civilDate, 0)

	for _, t := range trades {
		k := civil(t.Date, loc)
		acc, ok := sums[k]
		if !ok {
			acc = &amount{}
			sums[k] = acc
			keys = append(keys, k)
		}
		acc.add(t.PnL())
		counts[k]++
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].at(time.UTC).Before(keys[j].at(time.UTC))
	})

	days := make([]DayPnL, 0, len(keys))
	for _, k := range keys {
		pnl := sums[k].float()
		days = append(days, DayPnL{
			Date:    k.at(loc),
			PnL:     pnl,
			Trades:  counts[k],
			Outcome: models.OutcomeOf(pnl),
		})
	}
	return days
}
