// Package models provides domain models for the trading journal.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction represents the side a trade was opened on.
type Direction string

const (
	DirectionLong  Direction = "Long"
	DirectionShort Direction = "Short"
)

// ParseDirection parses a direction string. It accepts "long"/"short" in any case
// as well as the broker-style "BUY"/"SELL".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return DirectionLong, nil
	case "SHORT", "SELL":
		return DirectionShort, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Outcome classifies a trade or a day by the sign of its P&L.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakEven Outcome = "BREAK_EVEN"
)

// OutcomeOf returns the outcome for a signed P&L value.
func OutcomeOf(pnl float64) Outcome {
	switch {
	case pnl > 0:
		return OutcomeWin
	case pnl < 0:
		return OutcomeLoss
	default:
		return OutcomeBreakEven
	}
}

// NamedRef is a reference to a named category (strategy, outcome summary,
// emotional state). Upstream payloads carry either a bare id string or a
// populated {id, name} object; both decode into this one shape.
type NamedRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Label returns the display name, falling back to the id.
func (r *NamedRef) Label() string {
	if r == nil {
		return ""
	}
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return strings.TrimSpace(r.ID)
}

// UnmarshalJSON accepts either "id" or {"id": ..., "name": ...}.
func (r *NamedRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = NamedRef{ID: id}
		return nil
	}

	type plain NamedRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding named reference: %w", err)
	}
	*r = NamedRef(p)
	return nil
}

// UnmarshalYAML accepts either a scalar id or a mapping with id and name.
func (r *NamedRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = NamedRef{ID: value.Value}
		return nil
	}

	type plain NamedRef
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("decoding named reference: %w", err)
	}
	*r = NamedRef(p)
	return nil
}

// NewRef builds a reference from a name, using the name as id too.
// Returns nil for blank names so absent categories stay absent.
func NewRef(name string) *NamedRef {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &NamedRef{ID: name, Name: name}
}

// NormalizeSymbol trims and upper-cases a free-text symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Float returns a pointer to v. Used for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
