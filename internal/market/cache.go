// Package market owns the last-known quote per symbol. The cache is
// refreshed on a timer (and optionally by a streaming feed) and exposes a
// synchronous, purely in-memory read to the execution engine.
package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
	"github.com/Satwik-user/TradeBot-0/internal/infra"
)

// Cache holds one Quote per supported symbol. Entries are swapped whole
// under the lock, so a concurrent reader sees either the previous or the
// new snapshot, never a torn one.
type Cache struct {
	mu       sync.RWMutex
	quotes   map[string]domain.Quote
	symbols  *domain.SymbolSet
	provider QuoteProvider
	limiter  *infra.RateLimiter // optional, guards provider calls
}

// NewCache creates an empty cache over the supported symbol set.
func NewCache(symbols *domain.SymbolSet, provider QuoteProvider, limiter *infra.RateLimiter) *Cache {
	return &Cache{
		quotes:   make(map[string]domain.Quote),
		symbols:  symbols,
		provider: provider,
		limiter:  limiter,
	}
}

// Get returns the cached quote for a symbol. It never blocks on I/O.
func (c *Cache) Get(sym domain.Symbol) (domain.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[sym.String()]
	return q, ok
}

// Put stores a quote, replacing any previous snapshot for the symbol.
// Used by RefreshAll and by the streaming feed worker.
func (c *Cache) Put(q domain.Quote) {
	c.mu.Lock()
	c.quotes[q.Symbol.String()] = q
	c.mu.Unlock()
}

// RefreshAll fetches every supported symbol from the provider. Refresh is
// best-effort per symbol: one failed fetch does not abort the others, and
// the previous quote is kept (stale but available) rather than cleared.
func (c *Cache) RefreshAll(ctx context.Context) {
	for _, sym := range c.symbols.All() {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
		}

		q, err := c.provider.FetchQuote(ctx, sym)
		if err != nil {
			slog.Warn("quote refresh failed, keeping stale entry",
				slog.String("symbol", sym.String()),
				slog.Any("error", err))
			continue
		}
		c.Put(q)
	}
}

// Refresher runs RefreshAll on a fixed interval until stopped.
type Refresher struct {
	cache    *Cache
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewRefresher creates a refresher; interval defaults to 30s when zero.
func NewRefresher(cache *Cache, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{cache: cache, interval: interval}
}

// Start performs one immediate refresh, then refreshes on every tick.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.cache.RefreshAll(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("market refresher stopped")
				return
			case <-ticker.C:
				r.cache.RefreshAll(ctx)
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
