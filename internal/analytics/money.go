package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// amount accumulates currency values without binary float drift.
type amount struct {
	sum decimal.Decimal
}

// add ignores NaN and ±Inf.
func (a *amount) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	a.sum = a.sum.Add(decimal.NewFromFloat(v))
}

func (a amount) float() float64 {
	f, _ := a.sum.Float64()
	return f
}

// div returns sum/n, or 0 when n is 0.
func (a amount) div(n int) float64 {
	if n == 0 {
		return 0
	}
	f, _ := a.sum.Div(decimal.NewFromInt(int64(n))).Float64()
	return f
}

// rate returns part/whole*100, or 0 when whole is 0.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
