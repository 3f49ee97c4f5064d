// Package engine resolves parsed intents against market state and the
// ledger. A command moves through parse, then exactly one terminal:
// quoted, executed, or rejected with a typed kind. Rejections are
// results, never panics, and a rejected command leaves no trace in the
// ledger.
package engine

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
	"github.com/Satwik-user/TradeBot-0/internal/ledger"
	"github.com/Satwik-user/TradeBot-0/internal/market"
	"github.com/Satwik-user/TradeBot-0/internal/parser"
	"github.com/Satwik-user/TradeBot-0/internal/respond"
)

// Engine wires the parser, the market cache and the ledger into one
// command pipeline. The cache is read-only to the engine.
type Engine struct {
	parser     *parser.Parser
	symbols    *domain.SymbolSet
	cache      *market.Cache
	indicators market.IndicatorProvider
	ledger     *ledger.Ledger
}

// New creates an Engine. indicators may be nil when no indicator source
// is configured; indicator queries then fall back to a plain quote.
func New(p *parser.Parser, symbols *domain.SymbolSet, cache *market.Cache, indicators market.IndicatorProvider, l *ledger.Ledger) *Engine {
	return &Engine{
		parser:     p,
		symbols:    symbols,
		cache:      cache,
		indicators: indicators,
		ledger:     l,
	}
}

// ProcessCommand runs one raw utterance end to end: parse, execute,
// format, audit. It always returns a usable CommandResult; errors are
// folded into it as typed rejections.
func (e *Engine) ProcessCommand(ctx context.Context, userID, rawText string) domain.CommandResult {
	intent := e.parser.Parse(rawText)

	var res domain.CommandResult
	switch it := intent.(type) {
	case domain.QuoteRequest:
		res = e.handleQuote(ctx, it)
	case domain.PlaceOrder:
		res = e.ExecuteOrder(ctx, userID, it)
	case domain.StopLoss:
		res = e.handleStopLoss(it)
	default:
		res = reject(intent, domain.ErrUnparseableCommand)
	}

	res.ResponseText = respond.Format(res)
	e.ledger.RecordCommand(ctx, userID, rawText, intentKind(intent), res.ResponseText)

	slog.Info("command processed",
		slog.String("user", userID),
		slog.String("intent", intentKind(intent)),
		slog.String("action", string(res.Action)),
		slog.String("reject", string(res.RejectKind)))
	return res
}

// handleQuote serves a market snapshot. A symbol outside the configured
// set is an unknown-symbol rejection; a configured symbol with nothing
// cached yet means market data is unavailable.
func (e *Engine) handleQuote(ctx context.Context, it domain.QuoteRequest) domain.CommandResult {
	if !e.symbols.Contains(it.Symbol) {
		return reject(it, domain.ErrUnknownSymbol)
	}
	quote, ok := e.cache.Get(it.Symbol)
	if !ok {
		return reject(it, domain.ErrMarketDataUnavailable)
	}

	data := domain.QuoteData{Quote: quote}
	if it.Indicator != "" && e.indicators != nil {
		snap, err := e.indicators.FetchIndicator(ctx, it.Symbol, it.Indicator)
		if err != nil {
			slog.Warn("indicator fetch failed, serving plain quote",
				slog.String("symbol", it.Symbol.String()),
				slog.String("indicator", it.Indicator),
				slog.Any("error", err))
		} else {
			data.Indicator = &snap
		}
	}

	return domain.CommandResult{
		Intent: it,
		Action: domain.ActionQuote,
		Data:   data,
	}
}

// ExecuteOrder settles one order against the ledger. Market orders price
// at the cached quote; limit orders fill immediately at the requested
// price. Exposed separately so the direct trade endpoint can bypass the
// parser.
func (e *Engine) ExecuteOrder(ctx context.Context, userID string, it domain.PlaceOrder) domain.CommandResult {
	if !e.symbols.Contains(it.Symbol) {
		return reject(it, domain.ErrUnknownSymbol)
	}

	var price decimal.Decimal
	switch it.Kind {
	case domain.OrderLimit:
		price = it.LimitPrice
	default:
		quote, ok := e.cache.Get(it.Symbol)
		if !ok {
			return reject(it, domain.ErrMarketDataUnavailable)
		}
		price = quote.Price
	}

	trade, err := e.ledger.ReserveAndSettle(ctx, userID, it.Symbol, it.Side, it.Kind, it.Quantity, price)
	if err != nil {
		return reject(it, err)
	}

	return domain.CommandResult{
		Intent: it,
		Action: domain.ActionTrade,
		Data:   trade,
	}
}

// handleStopLoss reports the trigger price a protective stop would use.
// No resting order is created; the simulator only informs.
func (e *Engine) handleStopLoss(it domain.StopLoss) domain.CommandResult {
	if !e.symbols.Contains(it.Symbol) {
		return reject(it, domain.ErrUnknownSymbol)
	}
	quote, ok := e.cache.Get(it.Symbol)
	if !ok {
		return reject(it, domain.ErrMarketDataUnavailable)
	}

	factor := decimal.NewFromInt(1).Sub(it.Percent.Div(decimal.NewFromInt(100)))
	trigger := quote.Price.Mul(factor).Round(2)

	return domain.CommandResult{
		Intent: it,
		Action: domain.ActionInfo,
		Data: domain.StopLossInfo{
			Symbol:       it.Symbol,
			CurrentPrice: quote.Price,
			Percent:      it.Percent,
			TriggerPrice: trigger,
		},
	}
}

func reject(intent domain.Intent, err error) domain.CommandResult {
	return domain.CommandResult{
		Intent:     intent,
		Action:     domain.ActionError,
		RejectKind: domain.ClassifyError(err),
		Err:        err,
	}
}

func intentKind(intent domain.Intent) string {
	switch intent.(type) {
	case domain.QuoteRequest:
		return "market_query"
	case domain.PlaceOrder:
		return "trade_order"
	case domain.StopLoss:
		return "stop_loss"
	default:
		return "unrecognized"
	}
}
