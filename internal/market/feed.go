package market

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
	"github.com/Satwik-user/TradeBot-0/internal/infra"
)

// tickerMessage is the wire form pushed by the streaming market-data
// vendor. Prices come as strings to avoid float drift.
type tickerMessage struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Volume    string `json:"volume"`
	TsMillis  int64  `json:"ts"`
}

// TickerFeed keeps a websocket connection to a streaming quote source and
// pushes every ticker update into the cache. It complements the polling
// refresher: between refresh ticks the cache still moves.
// Reconnects with exponential backoff; a broken feed never affects
// command handling beyond quote staleness.
type TickerFeed struct {
	url     string
	cache   *Cache
	symbols *domain.SymbolSet

	readTimeout time.Duration
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewTickerFeed creates a feed worker for the given websocket URL.
func NewTickerFeed(url string, cache *Cache, symbols *domain.SymbolSet) *TickerFeed {
	return &TickerFeed{
		url:         url,
		cache:       cache,
		symbols:     symbols,
		readTimeout: 60 * time.Second,
	}
}

// Start launches the connect/read loop in its own goroutine.
func (f *TickerFeed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	go f.runLoop(ctx)
}

// Stop terminates the worker and waits for the loop to exit.
func (f *TickerFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.wg.Wait()
}

func (f *TickerFeed) runLoop(ctx context.Context) {
	defer f.wg.Done()
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := f.connect(ctx)
		if err != nil {
			slog.Warn("ticker feed connect failed",
				slog.String("url", f.url),
				slog.Int("retry", retry),
				slog.Any("error", err))
			delay := infra.RetryDelay(retry)
			retry++

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		slog.Info("ticker feed connected", slog.String("url", f.url))
		f.readLoop(ctx, conn)
	}
}

func (f *TickerFeed) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.url, nil)
	return conn, err
}

func (f *TickerFeed) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(f.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("ticker feed read error", slog.Any("error", err))
			return
		}
		f.handleMessage(msg)
	}
}

// handleMessage decodes one ticker frame and stores it. Frames for
// unsupported symbols or with unparseable prices are dropped.
func (f *TickerFeed) handleMessage(msg []byte) {
	quote, ok := f.decode(msg)
	if !ok {
		return
	}
	f.cache.Put(quote)
}

func (f *TickerFeed) decode(msg []byte) (domain.Quote, bool) {
	var tick tickerMessage
	if err := json.Unmarshal(msg, &tick); err != nil {
		slog.Warn("ticker feed bad frame", slog.Any("error", err))
		return domain.Quote{}, false
	}

	sym, ok := f.symbols.Lookup(tick.Symbol)
	if !ok {
		return domain.Quote{}, false
	}

	price, err := decimal.NewFromString(tick.Price)
	if err != nil || !price.IsPositive() {
		return domain.Quote{}, false
	}

	change, _ := decimal.NewFromString(tick.Change24h)
	volume, _ := decimal.NewFromString(tick.Volume)

	asOf := time.Now()
	if tick.TsMillis > 0 {
		asOf = time.UnixMilli(tick.TsMillis)
	}

	return domain.Quote{
		Symbol:    sym,
		Price:     price,
		Change24h: change,
		Volume:    volume,
		AsOf:      asOf,
	}, true
}
