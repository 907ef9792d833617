package analytics

import "math"

// Delta is the percentage change from previous to current. A zero baseline
// reports 0 when current is also zero and +100 otherwise, keeping the result
// finite for percentage displays.
func Delta(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / math.Abs(previous) * 100
}

// Comparison holds the period-over-period deltas of two snapshots.
type Comparison struct {
	Current        Period  `json:"current"`
	Previous       Period  `json:"previous"`
	GrossPnL       float64 `json:"gross_pnl"`
	WinRate        float64 `json:"win_rate"`
	TotalTrades    float64 `json:"total_trades"`
	AvgPnL         float64 `json:"avg_pnl"`
	Expectancy     float64 `json:"expectancy"`
	RiskRewardMean float64 `json:"risk_reward_mean"`
}

// Compare computes deltas between a current and a previous snapshot.
func Compare(current, previous *Snapshot) Comparison {
	return Comparison{
		Current:        current.Period,
		Previous:       previous.Period,
		GrossPnL:       Delta(current.Core.GrossPnL, previous.Core.GrossPnL),
		WinRate:        Delta(current.Core.WinRate, previous.Core.WinRate),
		TotalTrades:    Delta(float64(current.Core.Total), float64(previous.Core.Total)),
		AvgPnL:         Delta(current.Core.AvgPnL, previous.Core.AvgPnL),
		Expectancy:     Delta(current.Core.Expectancy, previous.Core.Expectancy),
		RiskRewardMean: Delta(current.RiskReward.Mean, previous.RiskReward.Mean),
	}
}
