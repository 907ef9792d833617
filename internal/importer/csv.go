package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// csvRow is the flat CSV layout of a trade. Lists use ';' as separator.
type csvRow struct {
	ID            string `csv:"id"`
	Date          string `csv:"date"`
	Symbol        string `csv:"symbol"`
	Direction     string `csv:"direction"`
	Quantity      string `csv:"quantity"`
	EntryPrice    string `csv:"entry_price"`
	ExitPrice     string `csv:"exit_price"`
	StopLoss      string `csv:"stop_loss"`
	Target        string `csv:"target"`
	TotalAmount   string `csv:"total_amount"`
	PnLAmount     string `csv:"pnl_amount"`
	PnLPercentage string `csv:"pnl_percentage"`
	Strategy      string `csv:"strategy"`
	Outcome       string `csv:"outcome"`
	Tags          string `csv:"tags"`
	Confidence    string `csv:"confidence"`
	Satisfaction  string `csv:"satisfaction"`
	Emotion       string `csv:"emotion"`
	Mistakes      string `csv:"mistakes"`
	Lessons       string `csv:"lessons"`
}

const listSeparator = ";"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (im *Importer) readCSV(r io.Reader) ([]models.Trade, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}

	trades := make([]models.Trade, 0, len(rows))
	for i, row := range rows {
		t, err := im.fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func (im *Importer) fromRow(row *csvRow) (models.Trade, error) {
	t := models.Trade{
		ID:             strings.TrimSpace(row.ID),
		Symbol:         row.Symbol,
		Direction:      models.Direction(strings.TrimSpace(row.Direction)),
		Strategy:       models.NewRef(row.Strategy),
		OutcomeSummary: models.NewRef(row.Outcome),
		Tags:           splitList(row.Tags),
	}

	var err error
	if t.Date, err = im.parseDate(row.Date); err != nil {
		return t, err
	}

	required := []struct {
		name string
		raw  string
		dest *float64
	}{
		{"quantity", row.Quantity, &t.Quantity},
		{"entry_price", row.EntryPrice, &t.EntryPrice},
	}
	for _, f := range required {
		v, err := parseOptional(f.name, f.raw)
		if err != nil {
			return t, err
		}
		if v == nil {
			return t, errors.NewValidationError(f.name, f.raw, "is required")
		}
		*f.dest = *v
	}

	if total, err := parseOptional("total_amount", row.TotalAmount); err != nil {
		return t, err
	} else if total != nil {
		t.TotalAmount = *total
	}

	optional := []struct {
		name string
		raw  string
		dest **float64
	}{
		{"exit_price", row.ExitPrice, &t.ExitPrice},
		{"stop_loss", row.StopLoss, &t.StopLoss},
		{"target", row.Target, &t.Target},
		{"pnl_amount", row.PnLAmount, &t.PnLAmount},
		{"pnl_percentage", row.PnLPercentage, &t.PnLPercentage},
	}
	for _, f := range optional {
		if *f.dest, err = parseOptional(f.name, f.raw); err != nil {
			return t, err
		}
	}

	psych := &models.Psychology{
		EmotionalState: models.NewRef(row.Emotion),
		MistakesMade:   splitList(row.Mistakes),
		LessonsLearned: strings.TrimSpace(row.Lessons),
	}
	if psych.EntryConfidenceLevel, err = parseOptional("confidence", row.Confidence); err != nil {
		return t, err
	}
	if psych.SatisfactionRating, err = parseOptional("satisfaction", row.Satisfaction); err != nil {
		return t, err
	}
	if psych.EntryConfidenceLevel != nil || psych.SatisfactionRating != nil || psych.EmotionalState != nil ||
		len(psych.MistakesMade) > 0 || psych.LessonsLearned != "" {
		t.Psychology = psych
	}

	return t, nil
}

func (im *Importer) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.NewValidationError("date", raw, "is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, im.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError("date", raw, "unrecognized date format")
}

func parseOptional(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.NewValidationError(name, raw, "not a number")
	}
	if !finite(v) {
		return nil, errors.NewValidationError(name, raw, "must be a finite number")
	}
	return &v, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return compact(strings.Split(raw, listSeparator))
}

func writeCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]*csvRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, toRow(t))
	}
	return gocsv.Marshal(rows, w)
}

func toRow(t models.Trade) *csvRow {
	row := &csvRow{
		ID:            t.ID,
		Date:          t.Date.Format(time.RFC3339),
		Symbol:        t.Symbol,
		Direction:     string(t.Direction),
		Quantity:      formatFloat(&t.Quantity),
		EntryPrice:    formatFloat(&t.EntryPrice),
		ExitPrice:     formatFloat(t.ExitPrice),
		StopLoss:      formatFloat(t.StopLoss),
		Target:        formatFloat(t.Target),
		TotalAmount:   formatFloat(&t.TotalAmount),
		PnLAmount:     formatFloat(t.PnLAmount),
		PnLPercentage: formatFloat(t.PnLPercentage),
		Strategy:      t.Strategy.Label(),
		Outcome:       t.OutcomeSummary.Label(),
		Tags:          strings.Join(t.Tags, listSeparator),
	}
	if p := t.Psychology; p != nil {
		row.Confidence = formatFloat(p.EntryConfidenceLevel)
		row.Satisfaction = formatFloat(p.SatisfactionRating)
		row.Emotion = p.EmotionalState.Label()
		row.Mistakes = strings.Join(p.MistakesMade, listSeparator)
		row.Lessons = p.LessonsLearned
	}
	return row
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
