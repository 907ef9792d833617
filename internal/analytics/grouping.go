package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trade-journal/internal/models"
)

// OtherKey is the group for trades whose grouped field is absent.
const OtherKey = "Other"

// GroupRow is the aggregate of one group key.
type GroupRow struct {
	Key       string  `json:"key"`
	Count     int     `json:"count"`
	ProfitSum float64 `json:"profit_sum"`
	LossSum   float64 `json:"loss_sum"` // positive magnitude
	WinCount  int     `json:"win_count"`
	WinRate   float64 `json:"win_rate"`
}

// Net returns ProfitSum minus LossSum.
func (g GroupRow) Net() float64 {
	return g.ProfitSum - g.LossSum
}

// KeyFunc maps a trade to the groups it belongs to. Returning several keys puts
// the trade in each of those groups once.
type KeyFunc func(models.Trade) []string

type groupAcc struct {
	count, wins    int
	profit, losses amount
}

// GroupBy reduces trades into one row per key, sorted by net P&L descending.
// Ties keep the order in which keys were first seen. The full set is returned.
func GroupBy(trades []models.Trade, key KeyFunc) []GroupRow {
	order := make([]string, 0)
	accs := make(map[string]*groupAcc)

	for _, t := range trades {
		seen := make(map[string]struct{})
		keys := key(t)
		if len(keys) == 0 {
			keys = []string{OtherKey}
		}
		for _, k := range keys {
			k = strings.TrimSpace(k)
			if k == "" {
				k = OtherKey
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			acc, ok := accs[k]
			if !ok {
				acc = &groupAcc{}
				accs[k] = acc
				order = append(order, k)
			}
			acc.count++
			pnl := t.PnL()
			switch {
			case pnl > 0:
				acc.wins++
				acc.profit.add(pnl)
			case pnl < 0:
				acc.losses.add(-pnl)
			}
		}
	}

	rows := make([]GroupRow, 0, len(order))
	for _, k := range order {
		acc := accs[k]
		rows = append(rows, GroupRow{
			Key:       k,
			Count:     acc.count,
			ProfitSum: acc.profit.float(),
			LossSum:   acc.losses.float(),
			WinCount:  acc.wins,
			WinRate:   rate(acc.wins, acc.count),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Net() > rows[j].Net()
	})
	return rows
}

// BySymbol groups by ticker symbol.
func BySymbol(t models.Trade) []string {
	return []string{t.Symbol}
}

// ByStrategy groups by strategy name.
func ByStrategy(t models.Trade) []string {
	return []string{t.Strategy.Label()}
}

// ByOutcomeSummary groups by the recorded outcome summary.
func ByOutcomeSummary(t models.Trade) []string {
	return []string{t.OutcomeSummary.Label()}
}

// ByTag puts a trade in one group per distinct tag.
func ByTag(t models.Trade) []string {
	return t.Tags
}

// ByDirection groups by Long/Short.
func ByDirection(t models.Trade) []string {
	return []string{string(t.Direction)}
}

// ByEmotionalState groups by the emotional state recorded at entry.
func ByEmotionalState(t models.Trade) []string {
	if t.Psychology == nil {
		return nil
	}
	return []string{t.Psychology.EmotionalState.Label()}
}

// ByWeekday groups by the weekday of the trade date in loc.
func ByWeekday(loc *time.Location) KeyFunc {
	if loc == nil {
		loc = time.Local
	}
	return func(t models.Trade) []string {
		return []string{t.Date.In(loc).Weekday().String()}
	}
}

// Grouping names accepted by KeyFuncFor.
const (
	GroupSymbol    = "symbol"
	GroupStrategy  = "strategy"
	GroupTag       = "tag"
	GroupWeekday   = "weekday"
	GroupDirection = "direction"
	GroupEmotion   = "emotion"
	GroupOutcome   = "outcome"
)

// KeyFuncFor resolves a grouping by name.
func KeyFuncFor(name string, opts Options) (KeyFunc, error) {
	switch strings.ToLower(name) {
	case GroupSymbol:
		return BySymbol, nil
	case GroupStrategy:
		return ByStrategy, nil
	case GroupTag:
		return ByTag, nil
	case GroupWeekday:
		return ByWeekday(opts.location()), nil
	case GroupDirection:
		return ByDirection, nil
	case GroupEmotion:
		return ByEmotionalState, nil
	case GroupOutcome:
		return ByOutcomeSummary, nil
	}
	return nil, fmt.Errorf("unknown grouping %q", name)
}
