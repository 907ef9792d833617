package analytics

import (
	"math"

	"trade-journal/internal/models"
)

// CoreMetrics are the scalar aggregates of a trade set.
type CoreMetrics struct {
	Total        int           `json:"total"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	BreakEvens   int           `json:"break_evens"`
	GrossPnL     float64       `json:"gross_pnl"`
	GrossProfit  float64       `json:"gross_profit"`
	GrossLoss    float64       `json:"gross_loss"` // positive magnitude
	AvgPnL       float64       `json:"avg_pnl"`
	WinRate      float64       `json:"win_rate"`
	LossRate     float64       `json:"loss_rate"`
	AvgWin       float64       `json:"avg_win"`
	AvgLoss      float64       `json:"avg_loss"` // mean of losing trades, negative
	Expectancy   float64       `json:"expectancy"`
	ProfitFactor float64       `json:"profit_factor"`
	BestTrade    *models.Trade `json:"best_trade"`
	WorstTrade   *models.Trade `json:"worst_trade"`
	BestDay      *DayPnL       `json:"best_day"`
	WorstDay     *DayPnL       `json:"worst_day"`
	Extremes     Extremes      `json:"extremes"`
}

// Extremes tracks the capital and quantity range of a trade set.
type Extremes struct {
	MaxCapital  float64 `json:"max_capital"`
	MinCapital  float64 `json:"min_capital"`
	MaxQuantity float64 `json:"max_quantity"`
	MinQuantity float64 `json:"min_quantity"`
}

// ComputeCoreMetrics computes counts, P&L, win rate and expectancy.
// Missing or non-finite P&L counts as break-even.
func ComputeCoreMetrics(trades []models.Trade, opts Options) CoreMetrics {
	m := CoreMetrics{Total: len(trades)}
	if len(trades) == 0 {
		return m
	}

	var gross, profit, loss amount
	best, worst := -1, -1

	for i, t := range trades {
		pnl := t.PnL()
		gross.add(pnl)

		switch t.Outcome() {
		case models.OutcomeWin:
			m.Wins++
			profit.add(pnl)
		case models.OutcomeLoss:
			m.Losses++
			loss.add(pnl)
		default:
			m.BreakEvens++
		}

		if t.HasPnL() {
			if best < 0 || pnl > trades[best].PnL() {
				best = i
			}
			if worst < 0 || pnl < trades[worst].PnL() {
				worst = i
			}
		}
	}

	m.GrossPnL = gross.float()
	m.GrossProfit = profit.float()
	m.GrossLoss = math.Abs(loss.float())
	m.AvgPnL = gross.div(m.Total)
	m.WinRate = rate(m.Wins, m.Total)
	m.LossRate = rate(m.Losses, m.Total)
	m.AvgWin = profit.div(m.Wins)
	m.AvgLoss = loss.div(m.Losses)
	m.Expectancy = m.AvgWin*m.WinRate/100 - math.Abs(m.AvgLoss)*m.LossRate/100
	if m.GrossLoss > 0 {
		m.ProfitFactor = m.GrossProfit / m.GrossLoss
	}

	if best >= 0 {
		b, w := trades[best], trades[worst]
		m.BestTrade, m.WorstTrade = &b, &w
	}

	days := DailyPnL(trades, opts)
	bestDay, worstDay := days[0], days[0]
	for _, d := range days[1:] {
		if d.PnL > bestDay.PnL {
			bestDay = d
		}
		if d.PnL < worstDay.PnL {
			worstDay = d
		}
	}
	m.BestDay, m.WorstDay = &bestDay, &worstDay

	m.Extremes = computeExtremes(trades)
	return m
}

func computeExtremes(trades []models.Trade) Extremes {
	e := Extremes{
		MaxCapital:  trades[0].TotalAmount,
		MinCapital:  trades[0].TotalAmount,
		MaxQuantity: trades[0].Quantity,
		MinQuantity: trades[0].Quantity,
	}
	for _, t := range trades[1:] {
		e.MaxCapital = math.Max(e.MaxCapital, t.TotalAmount)
		e.MinCapital = math.Min(e.MinCapital, t.TotalAmount)
		e.MaxQuantity = math.Max(e.MaxQuantity, t.Quantity)
		e.MinQuantity = math.Min(e.MinQuantity, t.Quantity)
	}
	return e
}
