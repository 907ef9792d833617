package analytics

import (
	"math"
	"sort"
	"time"

	"trade-journal/internal/models"
)

// RewardPrice returns the price the reward is measured to: the exit when the
// trade is closed, otherwise the target.
func RewardPrice(t models.Trade) (float64, bool) {
	if t.ExitPrice != nil {
		return *t.ExitPrice, true
	}
	if t.Target != nil {
		return *t.Target, true
	}
	return 0, false
}

// RiskReward returns the reward:risk multiple of a trade. StopLoss is a
// distance from entry, so it is the risk as-is. The ratio is defined only when
// both risk and reward are strictly positive.
func RiskReward(t models.Trade) (float64, bool) {
	if t.StopLoss == nil || !t.Direction.Valid() {
		return 0, false
	}
	risk := *t.StopLoss

	price, ok := RewardPrice(t)
	if !ok {
		return 0, false
	}

	var reward float64
	switch t.Direction {
	case models.DirectionLong:
		reward = price - t.EntryPrice
	case models.DirectionShort:
		reward = t.EntryPrice - price
	}

	if !(risk > 0) || !(reward > 0) {
		return 0, false
	}
	ratio := reward / risk
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return 0, false
	}
	return ratio, true
}

// RatioGroup is the mean risk:reward of one group of trades.
type RatioGroup struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// RiskRewardStats aggregates the defined risk:reward ratios of a trade set.
// Trades with an undefined ratio are excluded, never counted as zero.
type RiskRewardStats struct {
	Count     int          `json:"count"`
	Excluded  int          `json:"excluded"`
	Mean      float64      `json:"mean"`
	Median    float64      `json:"median"`
	Best      float64      `json:"best"`
	Worst     float64      `json:"worst"`
	BySymbol  []RatioGroup `json:"by_symbol"`
	ByWeekday []RatioGroup `json:"by_weekday"`
}

// ComputeRiskReward computes mean, median, extremes and per-symbol/per-weekday
// means of the defined ratios. BySymbol is sorted by mean descending, ties kept
// in first-appearance order; ByWeekday runs Sunday to Saturday.
func ComputeRiskReward(trades []models.Trade, opts Options) RiskRewardStats {
	var stats RiskRewardStats
	ratios := make([]float64, 0, len(trades))

	symbols := newRatioAccumulator()
	var weekdays [7]struct {
		sum   float64
		count int
	}

	loc := opts.location()
	for _, t := range trades {
		r, ok := RiskReward(t)
		if !ok {
			stats.Excluded++
			continue
		}
		ratios = append(ratios, r)
		symbols.add(t.Symbol, r)

		wd := t.Date.In(loc).Weekday()
		weekdays[wd].sum += r
		weekdays[wd].count++
	}

	stats.Count = len(ratios)
	stats.BySymbol = symbols.rows()
	stats.ByWeekday = make([]RatioGroup, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if w := weekdays[wd]; w.count > 0 {
			stats.ByWeekday = append(stats.ByWeekday, RatioGroup{
				Key:   wd.String(),
				Count: w.count,
				Mean:  w.sum / float64(w.count),
			})
		}
	}

	if len(ratios) == 0 {
		return stats
	}

	sum := 0.0
	stats.Best, stats.Worst = ratios[0], ratios[0]
	for _, r := range ratios {
		sum += r
		stats.Best = math.Max(stats.Best, r)
		stats.Worst = math.Min(stats.Worst, r)
	}
	stats.Mean = sum / float64(len(ratios))
	stats.Median = median(ratios)
	return stats
}

// median sorts a copy; even lengths average the two middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

type ratioAccumulator struct {
	order []string
	sums  map[string]float64
	count map[string]int
}

func newRatioAccumulator() *ratioAccumulator {
	return &ratioAccumulator{
		sums:  make(map[string]float64),
		count: make(map[string]int),
	}
}

func (a *ratioAccumulator) add(key string, r float64) {
	if key == "" {
		key = OtherKey
	}
	if _, ok := a.count[key]; !ok {
		a.order = append(a.order, key)
	}
	a.sums[key] += r
	a.count[key]++
}

func (a *ratioAccumulator) rows() []RatioGroup {
	rows := make([]RatioGroup, 0, len(a.order))
	for _, k := range a.order {
		rows = append(rows, RatioGroup{Key: k, Count: a.count[k], Mean: a.sums[k] / float64(a.count[k])})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Mean > rows[j].Mean
	})
	return rows
}

// RiskAmount is the currency amount at risk: stop distance times quantity.
// It does not depend on direction.
func RiskAmount(t models.Trade) (float64, bool) {
	if t.StopLoss == nil || !(*t.StopLoss > 0) || !(t.Quantity > 0) {
		return 0, false
	}
	return *t.StopLoss * t.Quantity, true
}

// Breach is a losing trade whose realized loss exceeded its planned risk.
type Breach struct {
	TradeID    string    `json:"trade_id"`
	Symbol     string    `json:"symbol"`
	Date       time.Time `json:"date"`
	RiskAmount float64   `json:"risk_amount"`
	Loss       float64   `json:"loss"`   // positive magnitude
	Excess     float64   `json:"excess"` // loss beyond risk amount
}

// BreachReport lists risk breaches among the trades that could be checked.
type BreachReport struct {
	Checked   int      `json:"checked"`
	Tolerance float64  `json:"tolerance"`
	Breaches  []Breach `json:"breaches"`
}

// DetectBreaches flags trades that closed at a loss larger than
// riskAmount*tolerance. Trades without a risk amount or a realized P&L are
// skipped. A non-positive tolerance falls back to DefaultBreachTolerance.
func DetectBreaches(trades []models.Trade, tolerance float64) BreachReport {
	if tolerance <= 0 {
		tolerance = DefaultBreachTolerance
	}
	report := BreachReport{Tolerance: tolerance, Breaches: []Breach{}}

	for _, t := range trades {
		risk, ok := RiskAmount(t)
		if !ok || !t.HasPnL() {
			continue
		}
		report.Checked++

		pnl := t.PnL()
		if pnl >= 0 {
			continue
		}
		loss := math.Abs(pnl)
		if loss > risk*tolerance {
			report.Breaches = append(report.Breaches, Breach{
				TradeID:    t.ID,
				Symbol:     t.Symbol,
				Date:       t.Date,
				RiskAmount: risk,
				Loss:       loss,
				Excess:     loss - risk,
			})
		}
	}
	return report
}
