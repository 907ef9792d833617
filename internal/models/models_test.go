package models

import (
	"encoding/json"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNamedRef_UnmarshalJSON(t *testing.T) {
	payload := `[
		{"id": "1", "symbol": "aapl", "date": "2024-01-02T10:00:00Z", "direction": "Long",
		 "entry_price": 100, "quantity": 2, "strategy": "s-42"},
		{"id": "2", "symbol": "MSFT", "date": "2024-01-03T10:00:00Z", "direction": "Short",
		 "entry_price": 50, "quantity": 1, "strategy": {"id": "s-7", "name": "Opening Range"},
		 "psychology": {"emotional_state": {"id": "e1", "name": "Calm"}, "mistakes_made": ["FOMO"]}}
	]`

	var trades []Trade
	if err := json.Unmarshal([]byte(payload), &trades); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got := trades[0].Strategy.Label(); got != "s-42" {
		t.Errorf("bare id strategy label = %q, want s-42", got)
	}
	if got := trades[1].Strategy.Label(); got != "Opening Range" {
		t.Errorf("populated strategy label = %q, want Opening Range", got)
	}
	if trades[1].Strategy.ID != "s-7" {
		t.Errorf("strategy id = %q, want s-7", trades[1].Strategy.ID)
	}
	if got := trades[1].Psychology.EmotionalState.Label(); got != "Calm" {
		t.Errorf("emotional state = %q, want Calm", got)
	}
	if trades[0].OutcomeSummary.Label() != "" {
		t.Error("absent outcome summary should have an empty label")
	}
}

func TestNamedRef_UnmarshalJSONRejectsGarbage(t *testing.T) {
	var r NamedRef
	if err := json.Unmarshal([]byte(`[1, 2]`), &r); err == nil {
		t.Error("expected an error for an array reference")
	}
}

func TestNamedRef_UnmarshalYAML(t *testing.T) {
	doc := `
- id: "1"
  symbol: tsla
  date: 2024-01-02T10:00:00Z
  direction: Long
  entry_price: 200
  quantity: 1
  strategy: gap-fill
  tags: [gap, morning]
- id: "2"
  symbol: TSLA
  date: 2024-01-03T10:00:00Z
  direction: Short
  entry_price: 210
  quantity: 1
  strategy:
    id: s-9
    name: Fade
`
	var trades []Trade
	if err := yaml.Unmarshal([]byte(doc), &trades); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if got := trades[0].Strategy.Label(); got != "gap-fill" {
		t.Errorf("scalar strategy = %q, want gap-fill", got)
	}
	if got := trades[1].Strategy.Label(); got != "Fade" {
		t.Errorf("mapping strategy = %q, want Fade", got)
	}
	if len(trades[0].Tags) != 2 || trades[0].Date.Day() != 2 {
		t.Errorf("trade 0 = %+v", trades[0])
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"Long", DirectionLong, false},
		{"long", DirectionLong, false},
		{" BUY ", DirectionLong, false},
		{"short", DirectionShort, false},
		{"Sell", DirectionShort, false},
		{"", "", true},
		{"sideways", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDirection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrade_Normalize(t *testing.T) {
	tr := Trade{Symbol: " aapl ", EntryPrice: 150.5, Quantity: 4}
	tr.Normalize()
	if tr.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", tr.Symbol)
	}
	if tr.TotalAmount != 602 {
		t.Errorf("TotalAmount = %v, want 602", tr.TotalAmount)
	}

	kept := Trade{Symbol: "X", EntryPrice: 10, Quantity: 1, TotalAmount: 11}
	kept.Normalize()
	if kept.TotalAmount != 11 {
		t.Errorf("supplied TotalAmount overwritten: %v", kept.TotalAmount)
	}
}

func TestTrade_Outcome(t *testing.T) {
	if (Trade{}).Outcome() != OutcomeBreakEven {
		t.Error("missing P&L should be break-even")
	}
	if (Trade{PnLAmount: Float(-0.01)}).Outcome() != OutcomeLoss {
		t.Error("negative P&L should be a loss")
	}
	if (Trade{PnLAmount: Float(3)}).Outcome() != OutcomeWin {
		t.Error("positive P&L should be a win")
	}
}

func TestTrade_PnLNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		tr := Trade{PnLAmount: Float(v)}
		if tr.HasPnL() || tr.PnL() != 0 || tr.Outcome() != OutcomeBreakEven {
			t.Errorf("P&L %v: HasPnL=%v PnL=%v Outcome=%v", v, tr.HasPnL(), tr.PnL(), tr.Outcome())
		}
	}
	if !(Trade{PnLAmount: Float(-1)}).HasPnL() {
		t.Error("finite P&L should be reported")
	}
}

func TestNewRef(t *testing.T) {
	if NewRef("  ") != nil {
		t.Error("blank name should give nil")
	}
	if r := NewRef(" Scalp "); r == nil || r.ID != "Scalp" || r.Name != "Scalp" {
		t.Errorf("NewRef = %+v", r)
	}
}
