package analytics

import (
	"fmt"
	"strings"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// ValidateTrade checks the fields every aggregation relies on.
func ValidateTrade(t models.Trade) error {
	return validateAt(-1, t)
}

// ValidateTrades fails on the first trade that is missing its id, date or
// direction. Business gaps (no exit, no stop, no P&L) are not errors.
func ValidateTrades(trades []models.Trade) error {
	for i, t := range trades {
		if err := validateAt(i, t); err != nil {
			return err
		}
	}
	return nil
}

func validateAt(i int, t models.Trade) error {
	field := func(name string) string {
		if i < 0 {
			return "trade." + name
		}
		return fmt.Sprintf("trades[%d].%s", i, name)
	}

	if strings.TrimSpace(t.ID) == "" {
		return errors.NewValidationError(field("id"), t.ID, "id is required")
	}
	if t.Date.IsZero() {
		return errors.NewValidationError(field("date"), t.ID, "date is required")
	}
	if !t.Direction.Valid() {
		return errors.NewValidationError(field("direction"), t.Direction, "must be Long or Short")
	}
	return nil
}
