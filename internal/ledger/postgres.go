package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// PostgresStore persists the ledger in PostgreSQL, mirroring the sqlite
// schema with NUMERIC money columns. Intended for shared deployments
// where several API instances point at one database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			base_asset TEXT NOT NULL,
			quote_asset TEXT NOT NULL,
			side TEXT NOT NULL,
			kind TEXT NOT NULL,
			quantity NUMERIC NOT NULL,
			price NUMERIC NOT NULL,
			total_value NUMERIC NOT NULL,
			fee NUMERIC NOT NULL,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_user_created
			ON trades(user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS user_balances (
			user_id TEXT NOT NULL,
			asset TEXT NOT NULL,
			balance NUMERIC NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, asset)
		)`,
		`CREATE TABLE IF NOT EXISTS voice_commands (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			command_text TEXT NOT NULL,
			detected_intent TEXT NOT NULL,
			response_text TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveTrade(ctx context.Context, trade domain.Trade) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades
			(id, user_id, base_asset, quote_asset, side, kind, quantity, price, total_value, fee, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
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

func (s *PostgresStore) SettleTrade(ctx context.Context, trade domain.Trade, balances map[string]decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settle tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO trades
			(id, user_id, base_asset, quote_asset, side, kind, quantity, price, total_value, fee, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
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
			`INSERT INTO user_balances (user_id, asset, balance, updated_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, asset)
			 DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
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

func (s *PostgresStore) Trades(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, base_asset, quote_asset, side, kind,
			quantity::text, price::text, total_value::text, fee::text, status, created_at
		 FROM trades WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func (s *PostgresStore) TradeStats(ctx context.Context, userID string) (domain.TradeStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT side, total_value::text, fee::text FROM trades WHERE user_id = $1`, userID)
	if err != nil {
		return domain.TradeStats{}, fmt.Errorf("failed to query trade stats: %w", err)
	}
	defer rows.Close()

	return sumStats(rows)
}

func (s *PostgresStore) LoadBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset, balance::text FROM user_balances WHERE user_id = $1`, userID)
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

func (s *PostgresStore) SaveBalance(ctx context.Context, userID, asset string, balance decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_balances (user_id, asset, balance, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, asset)
		 DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		userID, asset, balance.String(), nowUnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert balance %s/%s: %w", userID, asset, err)
	}
	return nil
}

func (s *PostgresStore) LogCommand(ctx context.Context, entry CommandLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voice_commands (user_id, command_text, detected_intent, response_text, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.UserID, entry.CommandText, entry.Intent, entry.ResponseText,
		entry.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to log command: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
