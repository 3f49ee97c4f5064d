package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// MemoryStore is a Store kept entirely in memory. Used in tests and when
// no durable storage is configured.
type MemoryStore struct {
	mu       sync.Mutex
	trades   map[string][]domain.Trade // userID -> newest last
	balances map[string]map[string]decimal.Decimal
	commands []CommandLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trades:   make(map[string][]domain.Trade),
		balances: make(map[string]map[string]decimal.Decimal),
	}
}

func (m *MemoryStore) SaveTrade(ctx context.Context, trade domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades[trade.UserID] = append(m.trades[trade.UserID], trade)
	return nil
}

func (m *MemoryStore) SettleTrade(ctx context.Context, trade domain.Trade, balances map[string]decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Both maps mutate under the one lock, so the write is all-or-nothing
	// by construction.
	m.trades[trade.UserID] = append(m.trades[trade.UserID], trade)
	if m.balances[trade.UserID] == nil {
		m.balances[trade.UserID] = make(map[string]decimal.Decimal)
	}
	for asset, bal := range balances {
		m.balances[trade.UserID][asset] = bal
	}
	return nil
}

func (m *MemoryStore) Trades(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.trades[userID]
	out := make([]domain.Trade, 0, limit)
	// Newest first: walk the slice backwards.
	for i := len(all) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *MemoryStore) TradeStats(ctx context.Context, userID string) (domain.TradeStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := domain.TradeStats{
		TotalValue: decimal.Zero,
		TotalFees:  decimal.Zero,
	}
	for _, tr := range m.trades[userID] {
		stats.TotalTrades++
		if tr.Side == domain.SideBuy {
			stats.BuyCount++
		} else {
			stats.SellCount++
		}
		stats.TotalValue = stats.TotalValue.Add(tr.TotalValue)
		stats.TotalFees = stats.TotalFees.Add(tr.Fee)
	}
	return stats, nil
}

func (m *MemoryStore) LoadBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]decimal.Decimal)
	for asset, bal := range m.balances[userID] {
		out[asset] = bal
	}
	return out, nil
}

func (m *MemoryStore) SaveBalance(ctx context.Context, userID, asset string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.balances[userID] == nil {
		m.balances[userID] = make(map[string]decimal.Decimal)
	}
	m.balances[userID][asset] = balance
	return nil
}

func (m *MemoryStore) LogCommand(ctx context.Context, entry CommandLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, entry)
	return nil
}

// CommandCount reports how many audit entries were recorded.
func (m *MemoryStore) CommandCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.commands)
}

func (m *MemoryStore) Close() error { return nil }
