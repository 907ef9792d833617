package analytics

import "testing"

func TestDelta(t *testing.T) {
	tests := []struct {
		current, previous, want float64
	}{
		{0, 0, 0},
		{5, 0, 100},
		{-5, 0, 100},
		{-5, -10, 50},
		{150, 100, 50},
		{50, 100, -50},
		{-50, 100, -150},
		{0, 40, -100},
	}

	for _, tt := range tests {
		if got := Delta(tt.current, tt.previous); !approxEqual(got, tt.want) {
			t.Errorf("Delta(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	cur := &Snapshot{
		Period:     YearPeriod(2024),
		Core:       CoreMetrics{GrossPnL: 150, WinRate: 60, Total: 10, AvgPnL: 15, Expectancy: 12},
		RiskReward: RiskRewardStats{Mean: 2},
	}
	prev := &Snapshot{
		Period:     YearPeriod(2023),
		Core:       CoreMetrics{GrossPnL: 100, WinRate: 50, Total: 0, AvgPnL: 20, Expectancy: -12},
		RiskReward: RiskRewardStats{Mean: 0},
	}

	c := Compare(cur, prev)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"gross", c.GrossPnL, 50},
		{"win rate", c.WinRate, 20},
		{"total", c.TotalTrades, 100},
		{"avg", c.AvgPnL, -25},
		{"expectancy", c.Expectancy, 200},
		{"rr mean", c.RiskRewardMean, 100},
	}
	for _, ch := range checks {
		if !approxEqual(ch.got, ch.want) {
			t.Errorf("%s delta = %v, want %v", ch.name, ch.got, ch.want)
		}
	}
	if c.Current.Year != 2024 || c.Previous.Year != 2023 {
		t.Errorf("periods = %v / %v", c.Current, c.Previous)
	}
}
