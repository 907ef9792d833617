package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrade(id string, date time.Time) models.Trade {
	return models.Trade{
		ID:          id,
		Symbol:      "AAPL",
		Date:        date,
		Quantity:    10,
		Direction:   models.DirectionLong,
		EntryPrice:  100,
		TotalAmount: 1000,
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	full := sampleTrade("full", time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC))
	full.ExitPrice = models.Float(110)
	full.StopLoss = models.Float(5)
	full.Target = models.Float(120)
	full.PnLAmount = models.Float(100)
	full.PnLPercentage = models.Float(10)
	full.Strategy = &models.NamedRef{ID: "s1", Name: "Breakout"}
	full.OutcomeSummary = &models.NamedRef{ID: "o1"}
	full.Tags = []string{"momentum", "earnings"}
	full.Psychology = &models.Psychology{
		EntryConfidenceLevel: models.Float(7),
		EmotionalState:       &models.NamedRef{ID: "e1", Name: "Calm"},
		MistakesMade:         []string{"Late entry"},
		LessonsLearned:       "Wait for the close",
	}
	bare := sampleTrade("bare", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	n, err := s.SaveTrades(ctx, []models.Trade{full, bare})
	if err != nil || n != 2 {
		t.Fatalf("SaveTrades = %d, %v", n, err)
	}

	trades, err := s.GetTrades(ctx, TradeFilter{})
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(trades) != 2 || trades[0].ID != "bare" || trades[1].ID != "full" {
		t.Fatalf("expected [bare full] oldest first, got %+v", trades)
	}

	got := trades[1]
	if !got.Date.Equal(full.Date) || got.Direction != models.DirectionLong {
		t.Errorf("date/direction mismatch: %+v", got)
	}
	if got.ExitPrice == nil || *got.ExitPrice != 110 || got.StopLoss == nil || *got.StopLoss != 5 || got.PnLAmount == nil || *got.PnLAmount != 100 {
		t.Errorf("optional prices not restored: %+v", got)
	}
	if got.Strategy.Label() != "Breakout" || got.OutcomeSummary.Label() != "o1" {
		t.Errorf("refs = %+v / %+v", got.Strategy, got.OutcomeSummary)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "momentum" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Psychology == nil || got.Psychology.EmotionalState.Label() != "Calm" ||
		got.Psychology.SatisfactionRating != nil || got.Psychology.LessonsLearned != "Wait for the close" {
		t.Errorf("psychology = %+v", got.Psychology)
	}

	b := trades[0]
	if b.ExitPrice != nil || b.PnLAmount != nil || b.Strategy != nil || b.Tags != nil || b.Psychology != nil {
		t.Errorf("absent fields should stay absent: %+v", b)
	}
}

func TestSQLiteStore_ReplaceByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := sampleTrade("t1", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	tr.Psychology = &models.Psychology{LessonsLearned: "first"}
	if _, err := s.SaveTrades(ctx, []models.Trade{tr}); err != nil {
		t.Fatalf("SaveTrades: %v", err)
	}

	tr.PnLAmount = models.Float(-20)
	tr.Psychology = nil
	if _, err := s.SaveTrades(ctx, []models.Trade{tr}); err != nil {
		t.Fatalf("SaveTrades again: %v", err)
	}

	if n, _ := s.CountTrades(ctx); n != 1 {
		t.Errorf("CountTrades = %d, want 1", n)
	}
	got, err := s.GetTrade(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTrade: %v", err)
	}
	if got.PnL() != -20 || got.Psychology != nil {
		t.Errorf("replacement not applied: %+v", got)
	}
}

func TestSQLiteStore_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleTrade("a", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	b := sampleTrade("b", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	b.Symbol = "MSFT"
	b.Direction = models.DirectionShort
	c := sampleTrade("c", time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC))
	c.Strategy = &models.NamedRef{ID: "s9", Name: "Fade"}

	if _, err := s.SaveTrades(ctx, []models.Trade{a, b, c}); err != nil {
		t.Fatalf("SaveTrades: %v", err)
	}

	tests := []struct {
		name   string
		filter TradeFilter
		want   []string
	}{
		{"symbol", TradeFilter{Symbol: "msft"}, []string{"b"}},
		{"direction", TradeFilter{Direction: models.DirectionLong}, []string{"a", "c"}},
		{"strategy by name", TradeFilter{Strategy: "Fade"}, []string{"c"}},
		{"date range", TradeFilter{StartDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}, []string{"b"}},
		{"newest first with limit", TradeFilter{Newest: true, Limit: 2}, []string{"c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trades, err := s.GetTrades(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTrades: %v", err)
			}
			if len(trades) != len(tt.want) {
				t.Fatalf("got %d trades, want %v", len(trades), tt.want)
			}
			for i, id := range tt.want {
				if trades[i].ID != id {
					t.Errorf("trades[%d] = %s, want %s", i, trades[i].ID, id)
				}
			}
		})
	}
}

func TestSQLiteStore_DeleteTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := sampleTrade("gone", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	tr.Psychology = &models.Psychology{LessonsLearned: "x"}
	if _, err := s.SaveTrades(ctx, []models.Trade{tr}); err != nil {
		t.Fatalf("SaveTrades: %v", err)
	}

	if err := s.DeleteTrade(ctx, "gone"); err != nil {
		t.Fatalf("DeleteTrade: %v", err)
	}
	if n, _ := s.CountTrades(ctx); n != 0 {
		t.Errorf("CountTrades = %d after delete", n)
	}
	if err := s.DeleteTrade(ctx, "gone"); !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("expected ErrDataNotFound, got %v", err)
	}
	if _, err := s.GetTrade(ctx, "gone"); !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("expected ErrDataNotFound, got %v", err)
	}
}

func TestSQLiteStore_EmptySave(t *testing.T) {
	s := newTestStore(t)
	if n, err := s.SaveTrades(context.Background(), nil); err != nil || n != 0 {
		t.Errorf("SaveTrades(nil) = %d, %v", n, err)
	}
	trades, err := s.GetTrades(context.Background(), TradeFilter{})
	if err != nil || trades == nil || len(trades) != 0 {
		t.Errorf("GetTrades on empty store = %#v, %v", trades, err)
	}
}
