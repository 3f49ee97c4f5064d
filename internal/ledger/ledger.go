package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// Ledger is the single writer of account state. Balances live in memory
// as the authoritative copy and are written through to the Store; on
// first touch a user's balances are loaded from the Store, or seeded with
// the initial quote-asset balance for brand-new accounts.
type Ledger struct {
	store          Store
	feeRate        decimal.Decimal // fraction of notional, e.g. 0.001
	initialBalance decimal.Decimal
	quoteAsset     string

	mu       sync.Mutex // guards the two maps, never held across I/O
	accounts map[string]*domain.Account
	locks    map[string]*sync.Mutex

	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithFeeRate sets the fee as a fraction of notional (0.001 = 0.1%).
func WithFeeRate(rate decimal.Decimal) Option {
	return func(l *Ledger) { l.feeRate = rate }
}

// WithInitialBalance sets the quote-asset seed for new accounts.
func WithInitialBalance(amount decimal.Decimal) Option {
	return func(l *Ledger) { l.initialBalance = amount }
}

// WithQuoteAsset sets the asset new accounts are seeded in.
func WithQuoteAsset(asset string) Option {
	return func(l *Ledger) { l.quoteAsset = asset }
}

// WithClock overrides the trade timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over a Store. Defaults: 0.1% fee, 10000 USDT seed.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:          store,
		feeRate:        decimal.NewFromFloat(0.001),
		initialBalance: decimal.NewFromInt(10000),
		quoteAsset:     "USDT",
		accounts:       make(map[string]*domain.Account),
		locks:          make(map[string]*sync.Mutex),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// userLock returns the per-user mutex, creating it on first use.
// Commands for the same user serialize on it; different users never
// contend.
func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// account returns the in-memory account, loading or seeding it under the
// caller-held user lock.
func (l *Ledger) account(ctx context.Context, userID string) (*domain.Account, error) {
	l.mu.Lock()
	acc, ok := l.accounts[userID]
	l.mu.Unlock()
	if ok {
		return acc, nil
	}

	stored, err := l.store.LoadBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load balances for %s: %w", userID, err)
	}

	acc = domain.NewAccount(userID)
	if len(stored) == 0 {
		acc.Balances[l.quoteAsset] = l.initialBalance
	} else {
		for asset, bal := range stored {
			acc.Balances[asset] = bal
		}
	}
	if err := acc.VerifyInvariant(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.accounts[userID] = acc
	l.mu.Unlock()
	return acc, nil
}

// GetBalance returns a user's balance for one asset, zero if absent.
func (l *Ledger) GetBalance(ctx context.Context, userID, asset string) (decimal.Decimal, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	acc, err := l.account(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance(asset), nil
}

// Balances returns a copy of the whole account.
func (l *Ledger) Balances(ctx context.Context, userID string) (*domain.Account, error) {
	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	acc, err := l.account(ctx, userID)
	if err != nil {
		return nil, err
	}
	return acc.Clone(), nil
}

// ReserveAndSettle checks sufficiency, moves both asset legs and appends
// exactly one simulated trade — atomically per user. The user lock is
// held for the whole check-then-act sequence so two concurrent orders can
// never both pass a balance check against a since-stale balance. On any
// failure no balance changes and no trade is recorded.
func (l *Ledger) ReserveAndSettle(ctx context.Context, userID string, sym domain.Symbol, side domain.Side, kind domain.OrderKind, quantity, price decimal.Decimal) (domain.Trade, error) {
	if !quantity.IsPositive() {
		return domain.Trade{}, fmt.Errorf("quantity %s must be positive", quantity)
	}
	if !price.IsPositive() {
		return domain.Trade{}, fmt.Errorf("price %s must be positive", price)
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	acc, err := l.account(ctx, userID)
	if err != nil {
		return domain.Trade{}, err
	}

	notional := quantity.Mul(price)
	fee := notional.Mul(l.feeRate).Round(2)

	// Mutate a scratch copy; the live account is only swapped in after
	// the invariant check and the durable writes succeed.
	work := acc.Clone()

	switch side {
	case domain.SideBuy:
		required := notional.Add(fee)
		available := work.Balance(sym.Quote)
		if available.LessThan(required) {
			return domain.Trade{}, &domain.InsufficientFundsError{
				Asset:     sym.Quote,
				Required:  required,
				Available: available,
			}
		}
		if err := work.Debit(sym.Quote, required); err != nil {
			return domain.Trade{}, err
		}
		if err := work.Credit(sym.Base, quantity); err != nil {
			return domain.Trade{}, err
		}

	case domain.SideSell:
		available := work.Balance(sym.Base)
		if available.LessThan(quantity) {
			return domain.Trade{}, &domain.InsufficientInventoryError{
				Asset:     sym.Base,
				Required:  quantity,
				Available: available,
			}
		}
		if err := work.Debit(sym.Base, quantity); err != nil {
			return domain.Trade{}, err
		}
		if err := work.Credit(sym.Quote, notional.Sub(fee)); err != nil {
			return domain.Trade{}, err
		}

	default:
		return domain.Trade{}, fmt.Errorf("unknown side %q", side)
	}

	// An invariant breach here is a ledger bug: abort loudly, apply
	// nothing.
	if err := work.VerifyInvariant(); err != nil {
		slog.Error("ledger invariant breach, mutation aborted",
			slog.String("user", userID),
			slog.Any("error", err))
		return domain.Trade{}, err
	}

	trade := domain.Trade{
		ID:         "ord-" + uuid.NewString(),
		UserID:     userID,
		Symbol:     sym,
		Side:       side,
		Kind:       kind,
		Quantity:   quantity,
		Price:      price,
		TotalValue: notional,
		Fee:        fee,
		Status:     domain.StatusSimulated,
		CreatedAt:  l.now(),
	}

	// One atomic write for the trade and both balance legs: a storage
	// failure here must not leave an orphan trade behind.
	if err := l.store.SettleTrade(ctx, trade, map[string]decimal.Decimal{
		sym.Base:  work.Balance(sym.Base),
		sym.Quote: work.Balance(sym.Quote),
	}); err != nil {
		return domain.Trade{}, fmt.Errorf("persist settle: %w", err)
	}

	l.mu.Lock()
	l.accounts[userID] = work
	l.mu.Unlock()

	slog.Info("trade settled",
		slog.String("id", trade.ID),
		slog.String("user", userID),
		slog.String("symbol", sym.String()),
		slog.String("side", string(side)),
		slog.String("qty", quantity.String()),
		slog.String("price", price.String()),
		slog.String("fee", fee.String()))

	return trade, nil
}

// History returns a user's trades, most recent first. Paging is by index:
// inserts racing a paging reader may shift entries between pages.
func (l *Ledger) History(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return l.store.Trades(ctx, userID, limit, offset)
}

// Stats aggregates a user's trading activity.
func (l *Ledger) Stats(ctx context.Context, userID string) (domain.TradeStats, error) {
	return l.store.TradeStats(ctx, userID)
}

// RecordCommand writes a command audit entry. Audit failures are logged,
// not surfaced: they must never fail the command itself.
func (l *Ledger) RecordCommand(ctx context.Context, userID, rawText, intentKind, responseText string) {
	entry := CommandLog{
		UserID:       userID,
		CommandText:  rawText,
		Intent:       intentKind,
		ResponseText: responseText,
		CreatedAt:    l.now(),
	}
	if err := l.store.LogCommand(ctx, entry); err != nil {
		slog.Warn("command audit log failed", slog.Any("error", err))
	}
}
