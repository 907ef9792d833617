package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/models"
)

func TestComputeCoreMetrics_Empty(t *testing.T) {
	m := ComputeCoreMetrics(nil, testOptions(day(2024, 1, 1)))

	if m.Total != 0 || m.Wins != 0 || m.Losses != 0 || m.BreakEvens != 0 {
		t.Errorf("expected zero counts, got %+v", m)
	}
	if m.WinRate != 0 || m.Expectancy != 0 || m.AvgPnL != 0 {
		t.Errorf("expected zero rates, got win rate %v expectancy %v avg %v", m.WinRate, m.Expectancy, m.AvgPnL)
	}
	if m.BestTrade != nil || m.WorstTrade != nil || m.BestDay != nil || m.WorstDay != nil {
		t.Error("expected nil best/worst on empty set")
	}
}

func TestComputeCoreMetrics_LongAndShort(t *testing.T) {
	trades := []models.Trade{
		{ID: "long", Symbol: "AAPL", Date: day(2024, 1, 2), Quantity: 10, Direction: models.DirectionLong,
			EntryPrice: 100, StopLoss: models.Float(10), ExitPrice: models.Float(130), PnLAmount: pnl(300), TotalAmount: 1000},
		{ID: "short", Symbol: "MSFT", Date: day(2024, 1, 3), Quantity: 20, Direction: models.DirectionShort,
			EntryPrice: 50, StopLoss: models.Float(5), ExitPrice: models.Float(60), PnLAmount: pnl(-200), TotalAmount: 1000},
	}

	m := ComputeCoreMetrics(trades, testOptions(day(2024, 1, 3)))

	if m.Total != 2 || m.Wins != 1 || m.Losses != 1 || m.BreakEvens != 0 {
		t.Fatalf("counts = %d/%d/%d/%d, want 2/1/1/0", m.Total, m.Wins, m.Losses, m.BreakEvens)
	}
	if m.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", m.WinRate)
	}
	if m.GrossPnL != 100 {
		t.Errorf("GrossPnL = %v, want 100", m.GrossPnL)
	}
	if m.AvgPnL != 50 {
		t.Errorf("AvgPnL = %v, want 50", m.AvgPnL)
	}
	if m.AvgWin != 300 || m.AvgLoss != -200 {
		t.Errorf("AvgWin/AvgLoss = %v/%v, want 300/-200", m.AvgWin, m.AvgLoss)
	}
	// 300*0.5 - 200*0.5
	if m.Expectancy != 50 {
		t.Errorf("Expectancy = %v, want 50", m.Expectancy)
	}
	if m.ProfitFactor != 1.5 {
		t.Errorf("ProfitFactor = %v, want 1.5", m.ProfitFactor)
	}
	if m.BestTrade == nil || m.BestTrade.ID != "long" {
		t.Errorf("BestTrade = %+v, want long", m.BestTrade)
	}
	if m.WorstTrade == nil || m.WorstTrade.ID != "short" {
		t.Errorf("WorstTrade = %+v, want short", m.WorstTrade)
	}
	if m.BestDay == nil || m.BestDay.PnL != 300 || !m.BestDay.Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("BestDay = %+v, want 2024-01-02 +300", m.BestDay)
	}
	if m.WorstDay == nil || m.WorstDay.PnL != -200 {
		t.Errorf("WorstDay = %+v, want -200", m.WorstDay)
	}
}

func TestComputeCoreMetrics_BreakEvenIsSeparate(t *testing.T) {
	missing := closedTrade("missing", day(2024, 1, 2), 0)
	missing.PnLAmount = nil
	trades := []models.Trade{
		closedTrade("zero", day(2024, 1, 2), 0),
		missing,
		closedTrade("win", day(2024, 1, 2), 10),
		closedTrade("loss", day(2024, 1, 2), -10),
	}

	m := ComputeCoreMetrics(trades, testOptions(day(2024, 1, 2)))

	if m.BreakEvens != 2 {
		t.Errorf("BreakEvens = %d, want 2", m.BreakEvens)
	}
	if m.Wins+m.Losses+m.BreakEvens != m.Total {
		t.Errorf("partition broken: %d+%d+%d != %d", m.Wins, m.Losses, m.BreakEvens, m.Total)
	}
	if m.WinRate != 25 || m.LossRate != 25 {
		t.Errorf("rates = %v/%v, want 25/25", m.WinRate, m.LossRate)
	}
}

func TestComputeCoreMetrics_MissingPnLNeverBest(t *testing.T) {
	missing := closedTrade("missing", day(2024, 1, 2), 0)
	missing.PnLAmount = nil
	trades := []models.Trade{missing, closedTrade("loser", day(2024, 1, 2), -5)}

	m := ComputeCoreMetrics(trades, testOptions(day(2024, 1, 2)))

	if m.BestTrade == nil || m.BestTrade.ID != "loser" {
		t.Errorf("BestTrade = %+v, want loser", m.BestTrade)
	}
	if m.WorstTrade == nil || m.WorstTrade.ID != "loser" {
		t.Errorf("WorstTrade = %+v, want loser", m.WorstTrade)
	}

	only := ComputeCoreMetrics([]models.Trade{missing}, testOptions(day(2024, 1, 2)))
	if only.BestTrade != nil || only.WorstTrade != nil {
		t.Error("a trade without P&L must not be reported as best or worst")
	}
}

func TestComputeCoreMetrics_DecimalSums(t *testing.T) {
	trades := []models.Trade{
		closedTrade("a", day(2024, 1, 2), 0.1),
		closedTrade("b", day(2024, 1, 2), 0.2),
	}

	m := ComputeCoreMetrics(trades, testOptions(day(2024, 1, 2)))

	if m.GrossPnL != 0.3 {
		t.Errorf("GrossPnL = %v, want exactly 0.3", m.GrossPnL)
	}
}

func TestComputeCoreMetrics_Extremes(t *testing.T) {
	a := closedTrade("a", day(2024, 1, 2), 1)
	a.TotalAmount, a.Quantity = 5000, 50
	b := closedTrade("b", day(2024, 1, 3), 1)
	b.TotalAmount, b.Quantity = 200, 2
	c := closedTrade("c", day(2024, 1, 4), 1)
	c.TotalAmount, c.Quantity = 1200, 12

	m := ComputeCoreMetrics([]models.Trade{a, b, c}, testOptions(day(2024, 1, 4)))

	want := Extremes{MaxCapital: 5000, MinCapital: 200, MaxQuantity: 50, MinQuantity: 2}
	if m.Extremes != want {
		t.Errorf("Extremes = %+v, want %+v", m.Extremes, want)
	}
}

func TestComputeCoreMetrics_NonFinitePnLIsBreakEven(t *testing.T) {
	trades := []models.Trade{
		closedTrade("nan", day(2024, 1, 2), math.NaN()),
		closedTrade("inf", day(2024, 1, 2), math.Inf(1)),
		closedTrade("-inf", day(2024, 1, 3), math.Inf(-1)),
		closedTrade("ok", day(2024, 1, 3), 10),
	}

	m := ComputeCoreMetrics(trades, testOptions(day(2024, 1, 3)))

	if m.Total != 4 || m.Wins != 1 || m.Losses != 0 || m.BreakEvens != 3 {
		t.Errorf("counts = %d/%d/%d/%d", m.Total, m.Wins, m.Losses, m.BreakEvens)
	}
	if m.GrossPnL != 10 || m.AvgPnL != 2.5 {
		t.Errorf("GrossPnL = %v, AvgPnL = %v", m.GrossPnL, m.AvgPnL)
	}
	if m.BestTrade == nil || m.BestTrade.ID != "ok" || m.WorstTrade == nil || m.WorstTrade.ID != "ok" {
		t.Errorf("best/worst = %+v / %+v", m.BestTrade, m.WorstTrade)
	}
}

func TestSnapshot_NonFinitePnLDoesNotPanic(t *testing.T) {
	bad := closedTrade("nan", day(2024, 1, 2), math.NaN())
	bad.StopLoss = models.Float(1)
	worse := closedTrade("-inf", day(2024, 1, 2), math.Inf(-1))
	worse.StopLoss = models.Float(1)

	engine := NewEngine(testOptions(day(2024, 1, 2)), zerolog.Nop())
	snap, err := engine.Snapshot([]models.Trade{bad, worse}, Lifetime())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Core.GrossPnL != 0 {
		t.Errorf("GrossPnL = %v, want 0", snap.Core.GrossPnL)
	}
	if snap.Breaches.Checked != 0 || len(snap.Breaches.Breaches) != 0 {
		t.Errorf("breaches = %+v, non-finite P&L must not be checked", snap.Breaches)
	}
}
