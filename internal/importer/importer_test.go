package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func newTestImporter() *Importer {
	im := New(time.UTC, zerolog.Nop())
	n := 0
	im.newID = func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}
	return im
}

const sampleCSV = `id,date,symbol,direction,quantity,entry_price,exit_price,stop_loss,target,pnl_amount,pnl_percentage,strategy,outcome,tags,confidence,satisfaction,emotion,mistakes,lessons
t1,2024-01-02 10:30,aapl,long,10,100,110,5,,100,10,Breakout,Followed plan,momentum; earnings,8,7,Calm,,Be patient
,2024-01-03,msft,SELL,5,200,,,190,,,,,,,,,,
`

func TestRead_CSV(t *testing.T) {
	trades, err := newTestImporter().Read(strings.NewReader(sampleCSV), FormatCSV)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}

	a := trades[0]
	if a.ID != "t1" || a.Symbol != "AAPL" || a.Direction != models.DirectionLong {
		t.Errorf("trade 0 header fields = %+v", a)
	}
	if !a.Date.Equal(time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("date = %v", a.Date)
	}
	if a.ExitPrice == nil || *a.ExitPrice != 110 || a.StopLoss == nil || *a.StopLoss != 5 || a.Target != nil {
		t.Errorf("prices = exit %v stop %v target %v", a.ExitPrice, a.StopLoss, a.Target)
	}
	if a.TotalAmount != 1000 {
		t.Errorf("TotalAmount = %v, want 1000", a.TotalAmount)
	}
	if a.Strategy.Label() != "Breakout" || a.OutcomeSummary.Label() != "Followed plan" {
		t.Errorf("refs = %+v %+v", a.Strategy, a.OutcomeSummary)
	}
	if len(a.Tags) != 2 || a.Tags[1] != "earnings" {
		t.Errorf("tags = %q", a.Tags)
	}
	if a.Psychology == nil || *a.Psychology.EntryConfidenceLevel != 8 || a.Psychology.EmotionalState.Label() != "Calm" ||
		a.Psychology.MistakesMade != nil || a.Psychology.LessonsLearned != "Be patient" {
		t.Errorf("psychology = %+v", a.Psychology)
	}

	b := trades[1]
	if b.ID != "gen-1" {
		t.Errorf("missing id should be generated, got %q", b.ID)
	}
	if b.Direction != models.DirectionShort || b.PnLAmount != nil || b.Psychology != nil || b.Strategy != nil {
		t.Errorf("trade 1 = %+v", b)
	}
	if b.Target == nil || *b.Target != 190 {
		t.Errorf("target = %v", b.Target)
	}
}

func TestRead_CSVErrors(t *testing.T) {
	header := "id,date,symbol,direction,quantity,entry_price\n"
	tests := []struct {
		name string
		row  string
	}{
		{"bad number", "t1,2024-01-02,AAPL,Long,ten,100\n"},
		{"missing quantity", "t1,2024-01-02,AAPL,Long,,100\n"},
		{"bad date", "t1,02/01/2024,AAPL,Long,1,100\n"},
		{"bad direction", "t1,2024-01-02,AAPL,sideways,1,100\n"},
		{"missing direction", "t1,2024-01-02,AAPL,,1,100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestImporter().Read(strings.NewReader(header+tt.row), FormatCSV)
			if !errors.Is(err, errors.ErrInputValidation) {
				t.Errorf("expected ErrInputValidation, got %v", err)
			}
		})
	}
}

func TestRead_JSON(t *testing.T) {
	payload := `[
		{"id": "j1", "symbol": " nvda ", "date": "2024-02-01T14:00:00Z", "direction": "buy",
		 "quantity": 3, "entry_price": 500, "pnl_amount": -25, "strategy": "s-1",
		 "tags": ["", "gap"], "psychology": {"emotional_state": {"id": "e2", "name": "Anxious"}}}
	]`

	trades, err := newTestImporter().Read(strings.NewReader(payload), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	tr := trades[0]
	if tr.Symbol != "NVDA" || tr.Direction != models.DirectionLong || tr.TotalAmount != 1500 {
		t.Errorf("normalized trade = %+v", tr)
	}
	if tr.Strategy.Label() != "s-1" || len(tr.Tags) != 1 || tr.Tags[0] != "gap" {
		t.Errorf("strategy/tags = %+v %q", tr.Strategy, tr.Tags)
	}
	if tr.Psychology.EmotionalState.Label() != "Anxious" {
		t.Errorf("emotion = %+v", tr.Psychology.EmotionalState)
	}
}

func TestRead_YAML(t *testing.T) {
	doc := `
- id: y1
  symbol: spy
  date: 2024-03-04T15:00:00Z
  direction: Short
  quantity: 2
  entry_price: 510
  exit_price: 505
  stop_loss: 3
  strategy:
    id: s-2
    name: Fade
`
	trades, err := newTestImporter().Read(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(trades) != 1 || trades[0].Symbol != "SPY" || trades[0].Strategy.Label() != "Fade" {
		t.Errorf("trades = %+v", trades)
	}

	empty, err := newTestImporter().Read(strings.NewReader(""), FormatYAML)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty YAML = %v, %v", empty, err)
	}
}

func TestWriteThenRead_CSV(t *testing.T) {
	im := newTestImporter()
	original, err := im.Read(strings.NewReader(sampleCSV), FormatCSV)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, original); err != nil {
		t.Fatalf("Write: %v", err)
	}
	again, err := im.Read(&buf, FormatCSV)
	if err != nil {
		t.Fatalf("Read exported CSV: %v", err)
	}

	if len(again) != len(original) {
		t.Fatalf("got %d trades back, want %d", len(again), len(original))
	}
	for i := range original {
		if again[i].ID != original[i].ID || !again[i].Date.Equal(original[i].Date) || again[i].PnL() != original[i].PnL() ||
			again[i].Strategy.Label() != original[i].Strategy.Label() || len(again[i].Tags) != len(original[i].Tags) {
			t.Errorf("trade %d changed: %+v vs %+v", i, again[i], original[i])
		}
	}
}

func TestReadFile_DetectsFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.yml")
	if err := os.WriteFile(path, []byte("- {id: f1, symbol: x, date: 2024-01-02T10:00:00Z, direction: long, quantity: 1, entry_price: 1}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	trades, err := newTestImporter().ReadFile(path, "")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(trades) != 1 || trades[0].ID != "f1" {
		t.Errorf("trades = %+v", trades)
	}

	if _, err := newTestImporter().ReadFile(filepath.Join(dir, "trades.xlsx"), ""); !errors.Is(err, errors.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestReadAuto(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{`[{"id":"a","symbol":"X","date":"2024-01-02T10:00:00Z","direction":"Long","quantity":1,"entry_price":1}]`, FormatJSON},
		{"- id: a\n  symbol: X\n  date: 2024-01-02T10:00:00Z\n  direction: Long\n  quantity: 1\n  entry_price: 1\n", FormatYAML},
		{"id,date,symbol,direction,quantity,entry_price\na,2024-01-02,X,Long,1,1\n", FormatCSV},
	}
	for _, tt := range tests {
		trades, got, err := newTestImporter().ReadAuto(strings.NewReader(tt.input))
		if err != nil {
			t.Errorf("ReadAuto(%s): %v", tt.want, err)
			continue
		}
		if got != tt.want || len(trades) != 1 {
			t.Errorf("ReadAuto detected %s with %d trades, want %s", got, len(trades), tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"CSV": FormatCSV, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, errors.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestRead_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		doc    string
	}{
		{"csv pnl NaN", FormatCSV, "id,date,symbol,direction,quantity,entry_price,exit_price,stop_loss,target,pnl_amount\nx,2024-03-04,aapl,Long,1,10,,,,NaN\n"},
		{"csv quantity Inf", FormatCSV, "id,date,symbol,direction,quantity,entry_price\nx,2024-03-04,aapl,Long,Inf,10\n"},
		{"yaml pnl inf", FormatYAML, "- id: y1\n  symbol: spy\n  date: 2024-03-04T15:00:00Z\n  direction: Long\n  quantity: 1\n  entry_price: 10\n  pnl_amount: .inf\n"},
		{"yaml confidence nan", FormatYAML, "- id: y1\n  symbol: spy\n  date: 2024-03-04T15:00:00Z\n  direction: Long\n  quantity: 1\n  entry_price: 10\n  psychology:\n    entry_confidence_level: .nan\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestImporter().Read(strings.NewReader(tt.doc), tt.format)
			if !errors.Is(err, errors.ErrInputValidation) {
				t.Errorf("expected ErrInputValidation, got %v", err)
			}
		})
	}
}
