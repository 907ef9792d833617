package analytics

import (
	"sort"
	"time"

	"trade-journal/internal/models"
)

// TradeStreaks are the longest runs of consecutive winning and losing trades.
type TradeStreaks struct {
	MaxWin  int `json:"max_win"`
	MaxLoss int `json:"max_loss"`
}

// DayStreaks are streaks over calendar days, each day classified by the sign
// of its summed P&L.
type DayStreaks struct {
	MaxWin  int `json:"max_win"`
	MaxLoss int `json:"max_loss"`
	// Current is the run of same-outcome days ending at LastTradingDay. It is
	// only reported while LastTradingDay is recent; a stale run is 0.
	Current        int            `json:"current"`
	CurrentKind    models.Outcome `json:"current_kind,omitempty"`
	LastTradingDay time.Time      `json:"last_trading_day"`
	Days           []DayPnL       `json:"days"`
}

// Streaks holds both streak granularities.
type Streaks struct {
	Trade TradeStreaks `json:"trade"`
	Day   DayStreaks   `json:"day"`
}

// runTracker is the shared run-length scan: a win extends the win run and
// resets the loss run, a loss does the opposite, break-even resets both.
type runTracker struct {
	win, loss       int
	maxWin, maxLoss int
}

func (r *runTracker) push(o models.Outcome) {
	switch o {
	case models.OutcomeWin:
		r.win++
		r.loss = 0
		if r.win > r.maxWin {
			r.maxWin = r.win
		}
	case models.OutcomeLoss:
		r.loss++
		r.win = 0
		if r.loss > r.maxLoss {
			r.maxLoss = r.loss
		}
	default:
		r.win, r.loss = 0, 0
	}
}

// ComputeStreaks scans the trades in date order at trade and day granularity.
func ComputeStreaks(trades []models.Trade, opts Options) Streaks {
	var s Streaks
	s.Day.Days = []DayPnL{}
	if len(trades) == 0 {
		return s
	}

	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var tr runTracker
	for _, t := range sorted {
		tr.push(t.Outcome())
	}
	s.Trade = TradeStreaks{MaxWin: tr.maxWin, MaxLoss: tr.maxLoss}

	days := DailyPnL(sorted, opts)
	var dr runTracker
	for _, d := range days {
		dr.push(d.Outcome)
	}
	s.Day.MaxWin, s.Day.MaxLoss = dr.maxWin, dr.maxLoss
	s.Day.Days = days

	last := days[len(days)-1]
	s.Day.LastTradingDay = last.Date

	loc := opts.location()
	age := daysBetween(civil(last.Date, loc), civil(opts.now(), loc))
	if age > opts.recencyDays() {
		return s
	}

	switch last.Outcome {
	case models.OutcomeWin:
		s.Day.Current, s.Day.CurrentKind = dr.win, models.OutcomeWin
	case models.OutcomeLoss:
		s.Day.Current, s.Day.CurrentKind = dr.loss, models.OutcomeLoss
	}
	return s
}
