// Package store persists journaled trades.
package store

import (
	"context"
	"time"

	"trade-journal/internal/models"
)

// TradeStore is the persistence contract the CLI loads trades through. The
// analytics engine never talks to it directly.
type TradeStore interface {
	// SaveTrades inserts or replaces trades by id and returns how many were written.
	SaveTrades(ctx context.Context, trades []models.Trade) (int, error)
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	CountTrades(ctx context.Context) (int, error)
	DeleteTrade(ctx context.Context, id string) error
	Close() error
}

// TradeFilter narrows a trade query. Zero values match everything.
// StartDate is inclusive and EndDate exclusive.
type TradeFilter struct {
	Symbol    string
	Direction models.Direction
	Strategy  string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Newest    bool // newest first instead of oldest first
}
