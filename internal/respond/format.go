// Package respond turns a CommandResult into a human-readable sentence
// suitable for both display and speech synthesis. It is a pure
// projection: deterministic templates keyed by action and reject kind,
// no business logic.
package respond

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// quantityPrecision maps a symbol to the decimal places its quantities
// are displayed with. Unknown symbols fall back to 2.
var quantityPrecision = map[string]int32{
	"BTCUSDT":  6,
	"ETHUSDT":  5,
	"DOGEUSDT": 1,
}

// SymbolPrecision returns the display precision for a symbol's quantity.
func SymbolPrecision(symbol string) int32 {
	if p, ok := quantityPrecision[symbol]; ok {
		return p
	}
	return 2
}

// Format renders a CommandResult as one sentence.
func Format(res domain.CommandResult) string {
	switch res.Action {
	case domain.ActionQuote:
		if data, ok := res.Data.(domain.QuoteData); ok {
			return formatQuote(data)
		}
	case domain.ActionTrade:
		if trade, ok := res.Data.(domain.Trade); ok {
			return formatTrade(trade)
		}
	case domain.ActionInfo:
		if info, ok := res.Data.(domain.StopLossInfo); ok {
			return formatStopLoss(info)
		}
	case domain.ActionError:
		return formatRejection(res)
	}
	return "I'm sorry, I couldn't process that request."
}

func formatQuote(data domain.QuoteData) string {
	base := data.Quote.Symbol.Base
	if data.Indicator != nil {
		return formatIndicator(base, data.Quote, *data.Indicator)
	}
	return fmt.Sprintf("The current price of %s is $%s. It has changed %s%% in the last 24 hours.",
		base, Price(data.Quote.Price, 2), data.Quote.Change24h.StringFixed(2))
}

func formatIndicator(base string, quote domain.Quote, ind domain.IndicatorSnapshot) string {
	switch {
	case ind.Name == "RSI":
		return fmt.Sprintf("The RSI for %s is currently at %s. %s",
			base, ind.Value.StringFixed(2), ind.Interpretation)
	case ind.Name == "MACD":
		return fmt.Sprintf("The MACD line for %s is at %s with a signal line at %s. Histogram: %s. %s",
			base, ind.Value.StringFixed(2), ind.Signal.StringFixed(2),
			ind.Histogram.StringFixed(2), ind.Interpretation)
	case strings.Contains(ind.Name, "Bollinger"):
		return fmt.Sprintf("Bollinger Bands for %s: Upper band at $%s, middle band at $%s, and lower band at $%s. %s",
			base, Price(ind.Upper, 2), Price(ind.Value, 2), Price(ind.Lower, 2), ind.Interpretation)
	case strings.Contains(ind.Name, "Moving Average"):
		return fmt.Sprintf("The 20-day Moving Average for %s is $%s. Current price: $%s. %s",
			base, Price(ind.Value, 2), Price(quote.Price, 2), ind.Interpretation)
	}
	return fmt.Sprintf("The %s for %s is %s. %s",
		ind.Name, base, ind.Value.StringFixed(2), ind.Interpretation)
}

func formatTrade(trade domain.Trade) string {
	qty := trade.Quantity.StringFixed(SymbolPrecision(trade.Symbol.String()))
	return fmt.Sprintf("Your %s order for %s %s has been simulated at $%s, with a total value of $%s.",
		strings.ToUpper(string(trade.Side)), qty, trade.Symbol.Base,
		Price(trade.Price, 2), Price(trade.TotalValue, 2))
}

func formatStopLoss(info domain.StopLossInfo) string {
	return fmt.Sprintf("Setting a stop loss at %s%% below current price. If %s falls below $%s, your position will be closed.",
		info.Percent.StringFixed(0), info.Symbol.Base, Price(info.TriggerPrice, 2))
}

func formatRejection(res domain.CommandResult) string {
	switch res.RejectKind {
	case domain.RejectUnparseableCommand:
		return "I'm sorry, I didn't understand that command."
	case domain.RejectUnknownSymbol:
		return "I don't recognize that as a supported trading pair."
	case domain.RejectMarketDataUnavailable:
		return "Market data is unavailable right now. Please try again in a moment."
	case domain.RejectInsufficientFunds:
		var fundsErr *domain.InsufficientFundsError
		if errors.As(res.Err, &fundsErr) {
			return fmt.Sprintf("Insufficient funds: this order requires %s %s but only %s %s is available.",
				Price(fundsErr.Required, 2), fundsErr.Asset,
				Price(fundsErr.Available, 2), fundsErr.Asset)
		}
		return "Insufficient funds for this order."
	case domain.RejectInsufficientInventory:
		var invErr *domain.InsufficientInventoryError
		if errors.As(res.Err, &invErr) {
			return fmt.Sprintf("Insufficient holdings: this order requires %s %s but only %s %s is available.",
				invErr.Required.String(), invErr.Asset,
				invErr.Available.String(), invErr.Asset)
		}
		return "Insufficient holdings for this order."
	case domain.RejectLedgerInconsistency:
		return "An internal ledger error occurred. No changes were applied to your account."
	}
	return "I'm sorry, I couldn't process that request."
}

// Price formats a decimal with the given decimal places and thousands
// separators in the integer part, e.g. 58123.5 -> "58,123.50".
func Price(value decimal.Decimal, places int32) string {
	s := value.StringFixed(places)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
