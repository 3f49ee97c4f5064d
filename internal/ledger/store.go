// Package ledger owns per-user balances and the append-only trade log.
// All mutation goes through Ledger.ReserveAndSettle, which serializes
// commands per user.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// CommandLog is one audit record of an interpreted command.
type CommandLog struct {
	UserID       string
	CommandText  string
	Intent       string
	ResponseText string
	CreatedAt    time.Time
}

// Store is the durable-storage collaborator behind the ledger. The
// ledger holds the authoritative in-memory balances and writes through.
type Store interface {
	// SaveTrade appends one trade record.
	SaveTrade(ctx context.Context, trade domain.Trade) error

	// SettleTrade appends one trade and upserts the resulting balances in
	// a single atomic write. Either every row lands or none does: a
	// failed settle must never leave a trade without its balance legs.
	SettleTrade(ctx context.Context, trade domain.Trade, balances map[string]decimal.Decimal) error

	// Trades returns a user's history, most recent first. Paging is by
	// index, not cursor: concurrent inserts during paging may shift
	// results between pages.
	Trades(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error)

	// TradeStats aggregates a user's trading activity.
	TradeStats(ctx context.Context, userID string) (domain.TradeStats, error)

	// LoadBalances returns all persisted balances for a user; empty map if
	// the user is unknown.
	LoadBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error)

	// SaveBalance upserts one asset balance.
	SaveBalance(ctx context.Context, userID, asset string, balance decimal.Decimal) error

	// LogCommand records a command audit entry.
	LogCommand(ctx context.Context, entry CommandLog) error

	Close() error
}
