package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func btcusdt() domain.Symbol {
	return domain.Symbol{Base: "BTC", Quote: "USDT"}
}

func newTestLedger(t *testing.T) (*Ledger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return New(store), store
}

func TestReserveAndSettleBuy(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	trade, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000"))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	if !trade.TotalValue.Equal(dec("5800")) {
		t.Errorf("total value = %s, want 5800", trade.TotalValue)
	}
	if !trade.Fee.Equal(dec("5.8")) {
		t.Errorf("fee = %s, want 5.8", trade.Fee)
	}
	if trade.Status != domain.StatusSimulated {
		t.Errorf("status = %s, want simulated", trade.Status)
	}
	if trade.ID == "" {
		t.Error("trade ID should be assigned")
	}

	usdt, err := l.GetBalance(ctx, "u1", "USDT")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !usdt.Equal(dec("4194.2")) {
		t.Errorf("USDT after buy = %s, want 4194.2", usdt)
	}
	btc, _ := l.GetBalance(ctx, "u1", "BTC")
	if !btc.Equal(dec("0.1")) {
		t.Errorf("BTC after buy = %s, want 0.1", btc)
	}
}

func TestReserveAndSettleSellRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000")); err != nil {
		t.Fatalf("buy: %v", err)
	}
	trade, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideSell, domain.OrderMarket, dec("0.1"), dec("58000"))
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !trade.Fee.Equal(dec("5.8")) {
		t.Errorf("sell fee = %s, want 5.8", trade.Fee)
	}

	// Round trip at the same price loses exactly two fees.
	usdt, _ := l.GetBalance(ctx, "u1", "USDT")
	if !usdt.Equal(dec("9988.4")) {
		t.Errorf("USDT after round trip = %s, want 9988.4", usdt)
	}
	btc, _ := l.GetBalance(ctx, "u1", "BTC")
	if !btc.IsZero() {
		t.Errorf("BTC after round trip = %s, want 0", btc)
	}
}

func TestSellWithoutInventoryRejected(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	_, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideSell, domain.OrderMarket, dec("0.5"), dec("58000"))
	var invErr *domain.InsufficientInventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want InsufficientInventoryError", err)
	}
	if invErr.Asset != "BTC" {
		t.Errorf("asset = %s, want BTC", invErr.Asset)
	}
	if !invErr.Available.IsZero() {
		t.Errorf("available = %s, want 0", invErr.Available)
	}

	// Rejection leaves no trace: balances untouched, no trade recorded.
	usdt, _ := l.GetBalance(ctx, "u1", "USDT")
	if !usdt.Equal(dec("10000")) {
		t.Errorf("USDT after rejection = %s, want 10000", usdt)
	}
	trades, _ := store.Trades(ctx, "u1", 10, 0)
	if len(trades) != 0 {
		t.Errorf("trades recorded = %d, want 0", len(trades))
	}
}

func TestBuyBeyondBalanceRejected(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("1"), dec("58000"))
	var fundsErr *domain.InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		t.Fatalf("err = %v, want InsufficientFundsError", err)
	}
	if fundsErr.Asset != "USDT" {
		t.Errorf("asset = %s, want USDT", fundsErr.Asset)
	}
	if !fundsErr.Required.Equal(dec("58058")) {
		t.Errorf("required = %s, want 58058 (notional plus fee)", fundsErr.Required)
	}
	if !fundsErr.Available.Equal(dec("10000")) {
		t.Errorf("available = %s, want 10000", fundsErr.Available)
	}
}

func TestConcurrentBuysOnlyOneSettles(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	// Each order costs 5805.8; the 10000 seed affords exactly one.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000"))
		}(i)
	}
	wg.Wait()

	var settled, rejected int
	for _, err := range errs {
		if err == nil {
			settled++
			continue
		}
		var fundsErr *domain.InsufficientFundsError
		if !errors.As(err, &fundsErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		rejected++
	}
	if settled != 1 || rejected != 1 {
		t.Fatalf("settled = %d, rejected = %d, want exactly one of each", settled, rejected)
	}

	trades, _ := store.Trades(ctx, "u1", 10, 0)
	if len(trades) != 1 {
		t.Errorf("trades recorded = %d, want 1", len(trades))
	}
	usdt, _ := l.GetBalance(ctx, "u1", "USDT")
	if usdt.IsNegative() {
		t.Errorf("USDT went negative: %s", usdt)
	}
}

func TestBalancesNeverNegative(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// A mixed sequence where several legs must be rejected.
	ops := []struct {
		side domain.Side
		qty  string
	}{
		{domain.SideBuy, "0.1"},
		{domain.SideSell, "0.2"}, // over inventory
		{domain.SideSell, "0.05"},
		{domain.SideBuy, "5"}, // over funds
		{domain.SideSell, "0.05"},
		{domain.SideSell, "0.01"}, // inventory now empty
	}
	for _, op := range ops {
		l.ReserveAndSettle(ctx, "u1", btcusdt(), op.side, domain.OrderMarket, dec(op.qty), dec("58000"))
	}

	acc, err := l.Balances(ctx, "u1")
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	for asset, bal := range acc.Balances {
		if bal.IsNegative() {
			t.Errorf("%s balance is negative: %s", asset, bal)
		}
	}
}

// settleFailStore fails SettleTrade on demand to model a storage outage
// mid-settle.
type settleFailStore struct {
	*MemoryStore
	fail bool
}

func (s *settleFailStore) SettleTrade(ctx context.Context, trade domain.Trade, balances map[string]decimal.Decimal) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.SettleTrade(ctx, trade, balances)
}

func TestFailedPersistLeavesNoTrace(t *testing.T) {
	store := &settleFailStore{MemoryStore: NewMemoryStore(), fail: true}
	l := New(store)
	ctx := context.Background()

	_, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000"))
	if err == nil {
		t.Fatal("settle should surface the storage failure")
	}

	// The store must hold neither the trade nor any balance leg.
	trades, _ := store.Trades(ctx, "u1", 10, 0)
	if len(trades) != 0 {
		t.Errorf("orphan trade persisted: store has %d trade(s) but the settle failed", len(trades))
	}
	balances, _ := store.LoadBalances(ctx, "u1")
	if len(balances) != 0 {
		t.Errorf("balance rows persisted after failed settle: %v", balances)
	}

	// In-memory state is untouched too.
	usdt, _ := l.GetBalance(ctx, "u1", "USDT")
	if !usdt.Equal(dec("10000")) {
		t.Errorf("USDT after failed settle = %s, want 10000", usdt)
	}

	// Once storage recovers the same order settles cleanly and a replay
	// of the store reconciles with the trade history.
	store.fail = false
	if _, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000")); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	trades, _ = store.Trades(ctx, "u1", 10, 0)
	if len(trades) != 1 {
		t.Fatalf("trades after retry = %d, want 1", len(trades))
	}
	replayed := New(store)
	usdt, _ = replayed.GetBalance(ctx, "u1", "USDT")
	if !usdt.Equal(dec("4194.2")) {
		t.Errorf("replayed USDT = %s, want 4194.2", usdt)
	}
	btc, _ := replayed.GetBalance(ctx, "u1", "BTC")
	if !btc.Equal(dec("0.1")) {
		t.Errorf("replayed BTC = %s, want 0.1", btc)
	}
}

func TestNewAccountSeededOnce(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	usdt, err := l.GetBalance(ctx, "fresh", "USDT")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !usdt.Equal(dec("10000")) {
		t.Errorf("seed = %s, want 10000", usdt)
	}
	btc, _ := l.GetBalance(ctx, "fresh", "BTC")
	if !btc.IsZero() {
		t.Errorf("BTC seed = %s, want 0", btc)
	}
}

func TestBalancesSurviveRestart(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := New(store)
	if _, err := first.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000")); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// A second ledger over the same store must see the settled state,
	// not a fresh seed.
	second := New(store)
	usdt, err := second.GetBalance(ctx, "u1", "USDT")
	if err != nil {
		t.Fatalf("balance after restart: %v", err)
	}
	if !usdt.Equal(dec("4194.2")) {
		t.Errorf("USDT after restart = %s, want 4194.2", usdt)
	}
	btc, _ := second.GetBalance(ctx, "u1", "BTC")
	if !btc.Equal(dec("0.1")) {
		t.Errorf("BTC after restart = %s, want 0.1", btc)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	qtys := []string{"0.01", "0.02", "0.03"}
	for _, q := range qtys {
		if _, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec(q), dec("100")); err != nil {
			t.Fatalf("buy %s: %v", q, err)
		}
	}

	trades, err := l.History(ctx, "u1", 2, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("page length = %d, want 2", len(trades))
	}
	if !trades[0].Quantity.Equal(dec("0.03")) || !trades[1].Quantity.Equal(dec("0.02")) {
		t.Errorf("page order = %s, %s; want newest first", trades[0].Quantity, trades[1].Quantity)
	}

	rest, err := l.History(ctx, "u1", 2, 2)
	if err != nil {
		t.Fatalf("history offset: %v", err)
	}
	if len(rest) != 1 || !rest[0].Quantity.Equal(dec("0.01")) {
		t.Errorf("offset page = %v, want the single oldest trade", rest)
	}
}

func TestStats(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), dec("58000"))
	l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideSell, domain.OrderMarket, dec("0.05"), dec("60000"))

	stats, err := l.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTrades != 2 {
		t.Errorf("total trades = %d, want 2", stats.TotalTrades)
	}
	if stats.BuyCount != 1 || stats.SellCount != 1 {
		t.Errorf("buy/sell = %d/%d, want 1/1", stats.BuyCount, stats.SellCount)
	}
	if !stats.TotalValue.Equal(dec("8800")) {
		t.Errorf("total value = %s, want 8800", stats.TotalValue)
	}
	if !stats.TotalFees.Equal(dec("8.8")) {
		t.Errorf("total fees = %s, want 8.8", stats.TotalFees)
	}
}

func TestRejectsNonPositiveInputs(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, decimal.Zero, dec("58000")); err == nil {
		t.Error("zero quantity accepted")
	}
	if _, err := l.ReserveAndSettle(ctx, "u1", btcusdt(), domain.SideBuy, domain.OrderMarket, dec("0.1"), decimal.Zero); err == nil {
		t.Error("zero price accepted")
	}
}

func TestRecordCommand(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	l.RecordCommand(ctx, "u1", "buy 1 bitcoin", "place_order", "Simulated buy order placed")
	if got := store.CommandCount(); got != 1 {
		t.Errorf("command count = %d, want 1", got)
	}
}
