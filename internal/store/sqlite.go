package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/pkg/utils"
)

// SQLiteStore implements TradeStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	retry  utils.RetryConfig
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the journal database at dbPath.
func NewSQLiteStore(dbPath string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	retry := utils.DefaultRetryConfig()
	retry.Retryable = isBusy

	s := &SQLiteStore{
		db:     db,
		path:   dbPath,
		retry:  retry,
		logger: logger.With().Str("component", "store").Logger(),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		date DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		direction TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		stop_loss REAL,
		target REAL,
		total_amount REAL NOT NULL DEFAULT 0,
		pnl_amount REAL,
		pnl_percentage REAL,
		strategy_id TEXT,
		strategy_name TEXT,
		outcome_id TEXT,
		outcome_name TEXT,
		tags TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- one optional psychology record per trade
	CREATE TABLE IF NOT EXISTS trade_psychology (
		trade_id TEXT PRIMARY KEY,
		entry_confidence REAL,
		satisfaction REAL,
		emotion_id TEXT,
		emotion_name TEXT,
		mistakes TEXT,
		lessons TEXT,
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

func dbError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, errors.ErrDatabaseError, err)
}

// SaveTrades writes trades in one transaction, replacing rows with the same id.
// A busy database is retried with backoff.
func (s *SQLiteStore) SaveTrades(ctx context.Context, trades []models.Trade) (int, error) {
	if len(trades) == 0 {
		return 0, nil
	}

	start := time.Now()
	err := utils.Retry(ctx, s.retry, func() error {
		return s.saveTrades(ctx, trades)
	})
	logging.LogQuery(s.logger, "save_trades", len(trades), time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return len(trades), nil
}

func (s *SQLiteStore) saveTrades(ctx context.Context, trades []models.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	tradeStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trades (id, date, symbol, direction, quantity, entry_price, exit_price, stop_loss, target,
			total_amount, pnl_amount, pnl_percentage, strategy_id, strategy_name, outcome_id, outcome_name, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return dbError("failed to prepare trade statement", err)
	}
	defer tradeStmt.Close()

	psychStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO trade_psychology (trade_id, entry_confidence, satisfaction, emotion_id, emotion_name, mistakes, lessons)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return dbError("failed to prepare psychology statement", err)
	}
	defer psychStmt.Close()

	clearStmt, err := tx.PrepareContext(ctx, "DELETE FROM trade_psychology WHERE trade_id = ?")
	if err != nil {
		return dbError("failed to prepare psychology cleanup", err)
	}
	defer clearStmt.Close()

	for _, t := range trades {
		strategyID, strategyName := refColumns(t.Strategy)
		outcomeID, outcomeName := refColumns(t.OutcomeSummary)

		_, err := tradeStmt.ExecContext(ctx,
			t.ID, t.Date.UTC(), t.Symbol, string(t.Direction), t.Quantity, t.EntryPrice,
			t.ExitPrice, t.StopLoss, t.Target, t.TotalAmount, t.PnLAmount, t.PnLPercentage,
			strategyID, strategyName, outcomeID, outcomeName, jsonList(t.Tags))
		if err != nil {
			return dbError(fmt.Sprintf("failed to insert trade %s", t.ID), err)
		}

		if _, err := clearStmt.ExecContext(ctx, t.ID); err != nil {
			return dbError(fmt.Sprintf("failed to clear psychology for %s", t.ID), err)
		}
		if p := t.Psychology; p != nil {
			emotionID, emotionName := refColumns(p.EmotionalState)
			_, err := psychStmt.ExecContext(ctx, t.ID, p.EntryConfidenceLevel, p.SatisfactionRating,
				emotionID, emotionName, jsonList(p.MistakesMade), p.LessonsLearned)
			if err != nil {
				return dbError(fmt.Sprintf("failed to insert psychology for %s", t.ID), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("failed to commit transaction", err)
	}
	return nil
}

const selectTrades = `
	SELECT t.id, t.date, t.symbol, t.direction, t.quantity, t.entry_price, t.exit_price, t.stop_loss, t.target,
		t.total_amount, t.pnl_amount, t.pnl_percentage, t.strategy_id, t.strategy_name, t.outcome_id, t.outcome_name, t.tags,
		p.trade_id, p.entry_confidence, p.satisfaction, p.emotion_id, p.emotion_name, p.mistakes, p.lessons
	FROM trades t
	LEFT JOIN trade_psychology p ON p.trade_id = t.id`

// GetTrades retrieves trades matching filter, oldest first unless filter.Newest.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error) {
	start := time.Now()
	query := selectTrades + " WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND t.symbol = ?"
		args = append(args, models.NormalizeSymbol(filter.Symbol))
	}
	if filter.Direction != "" {
		query += " AND t.direction = ?"
		args = append(args, string(filter.Direction))
	}
	if filter.Strategy != "" {
		query += " AND (t.strategy_name = ? OR t.strategy_id = ?)"
		args = append(args, filter.Strategy, filter.Strategy)
	}
	if !filter.StartDate.IsZero() {
		query += " AND t.date >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND t.date < ?"
		args = append(args, filter.EndDate.UTC())
	}

	if filter.Newest {
		query += " ORDER BY t.date DESC, t.id DESC"
	} else {
		query += " ORDER BY t.date ASC, t.id ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("failed to query trades", err)
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating trades", err)
	}

	logging.LogQuery(s.logger, "get_trades", len(trades), time.Since(start), nil)
	return trades, nil
}

// GetTrade returns one trade by id.
func (s *SQLiteStore) GetTrade(ctx context.Context, id string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, selectTrades+" WHERE t.id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewDataError("trade", s.path, fmt.Sprintf("no trade with id %s", id), errors.ErrDataNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountTrades returns the number of journaled trades.
func (s *SQLiteStore) CountTrades(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trades").Scan(&n); err != nil {
		return 0, dbError("failed to count trades", err)
	}
	return n, nil
}

// DeleteTrade removes a trade and its psychology record.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return dbError("failed to delete trade", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError("failed to delete trade", err)
	}
	if n == 0 {
		return errors.NewDataError("trade", s.path, fmt.Sprintf("no trade with id %s", id), errors.ErrDataNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (models.Trade, error) {
	var (
		t                        models.Trade
		direction                string
		strategyID, strategyName sql.NullString
		outcomeID, outcomeName   sql.NullString
		tags                     sql.NullString
		psychID                  sql.NullString
		confidence, satisfaction *float64
		emotionID, emotionName   sql.NullString
		mistakes, lessons        sql.NullString
	)

	err := row.Scan(&t.ID, &t.Date, &t.Symbol, &direction, &t.Quantity, &t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.Target,
		&t.TotalAmount, &t.PnLAmount, &t.PnLPercentage, &strategyID, &strategyName, &outcomeID, &outcomeName, &tags,
		&psychID, &confidence, &satisfaction, &emotionID, &emotionName, &mistakes, &lessons)
	if err == sql.ErrNoRows {
		return t, err
	}
	if err != nil {
		return t, dbError("failed to scan trade", err)
	}

	t.Direction = models.Direction(direction)
	t.Strategy = refFromColumns(strategyID, strategyName)
	t.OutcomeSummary = refFromColumns(outcomeID, outcomeName)
	t.Tags = parseList(tags)

	if psychID.Valid {
		t.Psychology = &models.Psychology{
			EntryConfidenceLevel: confidence,
			SatisfactionRating:   satisfaction,
			EmotionalState:       refFromColumns(emotionID, emotionName),
			MistakesMade:         parseList(mistakes),
			LessonsLearned:       lessons.String,
		}
	}
	return t, nil
}

func refColumns(r *models.NamedRef) (interface{}, interface{}) {
	if r == nil {
		return nil, nil
	}
	return r.ID, r.Name
}

func refFromColumns(id, name sql.NullString) *models.NamedRef {
	if !id.Valid && !name.Valid {
		return nil
	}
	return &models.NamedRef{ID: id.String, Name: name.String}
}

func jsonList(values []string) interface{} {
	if len(values) == 0 {
		return nil
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func parseList(col sql.NullString) []string {
	if !col.Valid || strings.TrimSpace(col.String) == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(col.String), &values); err != nil {
		return nil
	}
	return values
}
