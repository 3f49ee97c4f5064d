package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/glebarez/go-sqlite"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// SQLiteStore persists trades, balances and the command audit log in a
// local SQLite file. Decimals are stored as TEXT to keep them exact.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database with WAL mode enabled.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			base_asset TEXT NOT NULL,
			quote_asset TEXT NOT NULL,
			side TEXT NOT NULL,
			kind TEXT NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			total_value TEXT NOT NULL,
			fee TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_created
			ON trades(user_id, created_at DESC);`,
		`CREATE TABLE IF NOT EXISTS balances (
			user_id TEXT NOT NULL,
			asset TEXT NOT NULL,
			balance TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, asset)
		);`,
		`CREATE TABLE IF NOT EXISTS command_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			command_text TEXT NOT NULL,
			detected_intent TEXT NOT NULL,
			response_text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveTrade(ctx context.Context, trade domain.Trade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades
			(id, user_id, base_asset, quote_asset, side, kind, quantity, price, total_value, fee, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.UserID, trade.Symbol.Base, trade.Symbol.Quote,
		string(trade.Side), string(trade.Kind),
		trade.Quantity.String(), trade.Price.String(),
		trade.TotalValue.String(), trade.Fee.String(),
		string(trade.Status), trade.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.ID, err)
	}
	return nil
}

func (s *SQLiteStore) SettleTrade(ctx context.Context, trade domain.Trade, balances map[string]decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settle tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trades
			(id, user_id, base_asset, quote_asset, side, kind, quantity, price, total_value, fee, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trade.ID, trade.UserID, trade.Symbol.Base, trade.Symbol.Quote,
		string(trade.Side), string(trade.Kind),
		trade.Quantity.String(), trade.Price.String(),
		trade.TotalValue.String(), trade.Fee.String(),
		string(trade.Status), trade.CreatedAt.UnixMicro(),
	); err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.ID, err)
	}

	for asset, bal := range balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (user_id, asset, balance, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, asset)
			 DO UPDATE SET balance=excluded.balance, updated_at=excluded.updated_at`,
			trade.UserID, asset, bal.String(), nowUnixMicro(),
		); err != nil {
			return fmt.Errorf("failed to upsert balance %s/%s: %w", trade.UserID, asset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settle tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Trades(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, base_asset, quote_asset, side, kind, quantity, price, total_value, fee, status, created_at
		 FROM trades WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func (s *SQLiteStore) TradeStats(ctx context.Context, userID string) (domain.TradeStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT side, total_value, fee FROM trades WHERE user_id = ?`, userID)
	if err != nil {
		return domain.TradeStats{}, fmt.Errorf("failed to query trade stats: %w", err)
	}
	defer rows.Close()

	return sumStats(rows)
}

func (s *SQLiteStore) LoadBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset, balance FROM balances WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var asset, raw string
		if err := rows.Scan(&asset, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		bal, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt balance %q for %s/%s: %w", raw, userID, asset, err)
		}
		out[asset] = bal
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveBalance(ctx context.Context, userID, asset string, balance decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (user_id, asset, balance, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, asset)
		 DO UPDATE SET balance=excluded.balance, updated_at=excluded.updated_at`,
		userID, asset, balance.String(), nowUnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance %s/%s: %w", userID, asset, err)
	}
	return nil
}

func (s *SQLiteStore) LogCommand(ctx context.Context, entry CommandLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO command_log (user_id, command_text, detected_intent, response_text, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.UserID, entry.CommandText, entry.Intent, entry.ResponseText,
		entry.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to log command: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
