package models

import (
	"math"
	"time"
)

// Trade represents a single journaled trade.
type Trade struct {
	ID             string      `json:"id" yaml:"id"`
	Symbol         string      `json:"symbol" yaml:"symbol"`
	Date           time.Time   `json:"date" yaml:"date"`
	Quantity       float64     `json:"quantity" yaml:"quantity"`
	Direction      Direction   `json:"direction" yaml:"direction"`
	EntryPrice     float64     `json:"entry_price" yaml:"entry_price"`
	ExitPrice      *float64    `json:"exit_price,omitempty" yaml:"exit_price,omitempty"`
	StopLoss       *float64    `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"` // distance from entry, not a price level
	Target         *float64    `json:"target,omitempty" yaml:"target,omitempty"`       // absolute price level
	TotalAmount    float64     `json:"total_amount" yaml:"total_amount"`
	PnLAmount      *float64    `json:"pnl_amount,omitempty" yaml:"pnl_amount,omitempty"`
	PnLPercentage  *float64    `json:"pnl_percentage,omitempty" yaml:"pnl_percentage,omitempty"`
	Strategy       *NamedRef   `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	OutcomeSummary *NamedRef   `json:"outcome_summary,omitempty" yaml:"outcome_summary,omitempty"`
	Tags           []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
	Psychology     *Psychology `json:"psychology,omitempty" yaml:"psychology,omitempty"`
}

// Psychology holds the optional self-assessment recorded with a trade.
type Psychology struct {
	EntryConfidenceLevel *float64  `json:"entry_confidence_level,omitempty" yaml:"entry_confidence_level,omitempty"` // 1-10
	SatisfactionRating   *float64  `json:"satisfaction_rating,omitempty" yaml:"satisfaction_rating,omitempty"`       // 1-10
	EmotionalState       *NamedRef `json:"emotional_state,omitempty" yaml:"emotional_state,omitempty"`
	MistakesMade         []string  `json:"mistakes_made,omitempty" yaml:"mistakes_made,omitempty"`
	LessonsLearned       string    `json:"lessons_learned,omitempty" yaml:"lessons_learned,omitempty"`
}

// HasPnL reports whether the trade carries a finite P&L amount.
func (t Trade) HasPnL() bool {
	return t.PnLAmount != nil && !math.IsNaN(*t.PnLAmount) && !math.IsInf(*t.PnLAmount, 0)
}

// PnL returns the signed P&L amount, treating a missing or non-finite value
// as zero.
func (t Trade) PnL() float64 {
	if !t.HasPnL() {
		return 0
	}
	return *t.PnLAmount
}

// Outcome classifies the trade as win, loss or break-even.
func (t Trade) Outcome() Outcome {
	return OutcomeOf(t.PnL())
}

// IsClosed reports whether the trade has an exit price.
func (t Trade) IsClosed() bool {
	return t.ExitPrice != nil
}

// Normalize applies the entry-time conventions: upper-case symbol and a
// cached total amount when the caller did not supply one.
func (t *Trade) Normalize() {
	t.Symbol = NormalizeSymbol(t.Symbol)
	if t.TotalAmount == 0 {
		t.TotalAmount = t.EntryPrice * t.Quantity
	}
}
