package analytics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trade-journal/internal/models"
)

// Groups are the standard groupings rendered by the reports.
type Groups struct {
	Symbol    []GroupRow `json:"symbol"`
	Strategy  []GroupRow `json:"strategy"`
	Tag       []GroupRow `json:"tag"`
	Weekday   []GroupRow `json:"weekday"`
	Direction []GroupRow `json:"direction"`
	Outcome   []GroupRow `json:"outcome"`
}

// Snapshot is the full set of aggregates for one period. It is built fresh for
// every query and never persisted.
type Snapshot struct {
	Period      Period          `json:"period"`
	GeneratedAt time.Time       `json:"generated_at"`
	Core        CoreMetrics     `json:"core"`
	RiskReward  RiskRewardStats `json:"risk_reward"`
	Breaches    BreachReport    `json:"breaches"`
	Streaks     Streaks         `json:"streaks"`
	Groups      Groups          `json:"groups"`
	Psychology  PsychologyStats `json:"psychology"`
	Trades      []models.Trade  `json:"-"`
}

// Engine builds snapshots. It holds only configuration and is safe for
// concurrent use.
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine creates an engine with the given options.
func NewEngine(opts Options, logger zerolog.Logger) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WeekNumbering == "" {
		opts.WeekNumbering = WeekNumberingLegacy
	}
	return &Engine{
		opts:   opts,
		logger: logger.With().Str("component", "analytics").Logger(),
	}
}

// Options returns the engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// Filter narrows trades to period.
func (e *Engine) Filter(trades []models.Trade, period Period) []models.Trade {
	return FilterPeriod(trades, period, e.opts)
}

// Snapshot validates the trades, narrows them to period and computes every
// aggregate over the result.
func (e *Engine) Snapshot(trades []models.Trade, period Period) (*Snapshot, error) {
	if err := ValidateTrades(trades); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", period, err)
	}

	inPeriod := e.Filter(trades, period)
	loc := e.opts.location()

	snap := &Snapshot{
		Period:      period,
		GeneratedAt: e.opts.now(),
		Core:        ComputeCoreMetrics(inPeriod, e.opts),
		RiskReward:  ComputeRiskReward(inPeriod, e.opts),
		Breaches:    DetectBreaches(inPeriod, e.opts.tolerance()),
		Streaks:     ComputeStreaks(inPeriod, e.opts),
		Groups: Groups{
			Symbol:    GroupBy(inPeriod, BySymbol),
			Strategy:  GroupBy(inPeriod, ByStrategy),
			Tag:       GroupBy(inPeriod, ByTag),
			Weekday:   GroupBy(inPeriod, ByWeekday(loc)),
			Direction: GroupBy(inPeriod, ByDirection),
			Outcome:   GroupBy(inPeriod, ByOutcomeSummary),
		},
		Psychology: ComputePsychology(inPeriod),
		Trades:     inPeriod,
	}

	e.logger.Debug().
		Str("period", period.String()).
		Int("trades", len(trades)).
		Int("in_period", len(inPeriod)).
		Int("rr_defined", snap.RiskReward.Count).
		Int("rr_excluded", snap.RiskReward.Excluded).
		Int("breaches", len(snap.Breaches.Breaches)).
		Msg("Snapshot computed")

	return snap, nil
}
