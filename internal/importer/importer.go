// Package importer reads and writes journal trades as CSV, JSON or YAML.
package importer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"trade-journal/internal/analytics"
	"trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Format is a trade file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (must be csv, json or yaml)", errors.ErrUnsupportedFile, s)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension, pass --format", errors.ErrUnsupportedFile, path)
	}
	return ParseFormat(ext)
}

// Importer decodes trade files and normalizes the result for the journal.
type Importer struct {
	loc    *time.Location
	newID  func() string
	logger zerolog.Logger
}

// New creates an importer. Dates without a zone are read in loc.
func New(loc *time.Location, logger zerolog.Logger) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{
		loc:    loc,
		newID:  uuid.NewString,
		logger: logger.With().Str("component", "importer").Logger(),
	}
}

// ReadFile reads a trade file. An empty format is detected from the extension.
func (im *Importer) ReadFile(path string, format Format) ([]models.Trade, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("trades", path, "cannot open file", err)
	}
	defer f.Close()

	trades, err := im.Read(bufio.NewReader(f), format)
	return trades, errors.Wrap(err, path)
}

// Read decodes trades from r, fills missing ids and normalizes each trade.
// The first invalid row fails the whole read.
func (im *Importer) Read(r io.Reader, format Format) ([]models.Trade, error) {
	var (
		trades []models.Trade
		err    error
	)

	switch format {
	case FormatCSV:
		trades, err = im.readCSV(r)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&trades)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&trades)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFile, format)
	}
	if err != nil {
		return nil, errors.NewDataError("trades", string(format), "cannot decode", err)
	}

	generated := 0
	for i := range trades {
		if strings.TrimSpace(trades[i].ID) == "" {
			trades[i].ID = im.newID()
			generated++
		}
		if err := im.normalize(&trades[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if err := analytics.ValidateTrade(trades[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	im.logger.Debug().
		Str("format", string(format)).
		Int("trades", len(trades)).
		Int("generated_ids", generated).
		Msg("Trades decoded")

	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}

func (im *Importer) normalize(t *models.Trade) error {
	if t.Direction != "" {
		d, err := models.ParseDirection(string(t.Direction))
		if err != nil {
			return errors.NewValidationError("direction", t.Direction, err.Error())
		}
		t.Direction = d
	}
	if err := checkFinite(t); err != nil {
		return err
	}
	t.Normalize()
	t.Tags = compact(t.Tags)
	if t.Psychology != nil {
		t.Psychology.MistakesMade = compact(t.Psychology.MistakesMade)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type numField struct {
	name string
	v    *float64
}

// checkFinite rejects NaN and ±Inf in any numeric field. JSON cannot carry
// them but YAML (.nan, .inf) can.
func checkFinite(t *models.Trade) error {
	fields := []numField{
		{"quantity", &t.Quantity},
		{"entry_price", &t.EntryPrice},
		{"total_amount", &t.TotalAmount},
		{"exit_price", t.ExitPrice},
		{"stop_loss", t.StopLoss},
		{"target", t.Target},
		{"pnl_amount", t.PnLAmount},
		{"pnl_percentage", t.PnLPercentage},
	}
	if p := t.Psychology; p != nil {
		fields = append(fields, numField{"confidence", p.EntryConfidenceLevel}, numField{"satisfaction", p.SatisfactionRating})
	}
	for _, f := range fields {
		if f.v != nil && !finite(*f.v) {
			return errors.NewValidationError(f.name, *f.v, "must be a finite number")
		}
	}
	return nil
}

// Write encodes trades in the given format.
func Write(w io.Writer, format Format, trades []models.Trade) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, trades)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(trades)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(trades); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", errors.ErrUnsupportedFile, format)
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// sniff guesses the format of data: a JSON array, a YAML list, otherwise CSV.
func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("-")):
		return FormatYAML
	}
	return FormatCSV
}

// ReadAuto reads trades from r, guessing the format from the content.
func (im *Importer) ReadAuto(r io.Reader) ([]models.Trade, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.NewDataError("trades", "stdin", "cannot read input", err)
	}
	format := sniff(data)
	trades, err := im.Read(bytes.NewReader(data), format)
	return trades, format, err
}
