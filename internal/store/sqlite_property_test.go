package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: saving trades and reading them back yields the same P&L,
// dates and directions, in date order.
func TestProperty_TradeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	batch := 0
	properties.Property("save then load preserves trades", prop.ForAll(
		func(pnls []float64, short bool) bool {
			ctx := context.Background()
			batch++
			symbol := fmt.Sprintf("SYM%d", batch)
			base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

			trades := make([]models.Trade, len(pnls))
			for i, p := range pnls {
				tr := sampleTrade(fmt.Sprintf("%s-%d", symbol, i), base.Add(time.Duration(i)*time.Hour))
				tr.Symbol = symbol
				tr.PnLAmount = models.Float(math.Round(p*100) / 100)
				if short {
					tr.Direction = models.DirectionShort
				}
				trades[i] = tr
			}

			if _, err := s.SaveTrades(ctx, trades); err != nil {
				t.Logf("SaveTrades: %v", err)
				return false
			}
			got, err := s.GetTrades(ctx, TradeFilter{Symbol: symbol})
			if err != nil || len(got) != len(trades) {
				t.Logf("GetTrades: %d trades, %v", len(got), err)
				return false
			}
			for i := range trades {
				if got[i].ID != trades[i].ID || !got[i].Date.Equal(trades[i].Date) ||
					got[i].Direction != trades[i].Direction || got[i].PnL() != trades[i].PnL() {
					t.Logf("mismatch at %d: %+v vs %+v", i, got[i], trades[i])
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
