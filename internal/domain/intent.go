package domain

import "github.com/shopspring/decimal"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind distinguishes market and limit orders.
type OrderKind string

const (
	OrderMarket OrderKind = "market"
	OrderLimit  OrderKind = "limit"
)

// Intent is the structured representation of what a user command asked
// for. It is produced once per command by the parser, immutable, and
// consumed by the execution engine.
type Intent interface {
	intent()
}

// QuoteRequest asks for the latest market snapshot of a symbol.
// Indicator is optional ("rsi", "macd", "bollinger bands", "moving
// average"); when set, the snapshot should include that indicator.
type QuoteRequest struct {
	Symbol    Symbol
	Indicator string
}

// PlaceOrder asks to execute a simulated spot order. LimitPrice is only
// meaningful when Kind is OrderLimit.
type PlaceOrder struct {
	Symbol     Symbol
	Side       Side
	Kind       OrderKind
	Quantity   decimal.Decimal
	LimitPrice decimal.Decimal
}

// StopLoss asks to place a protective stop a given percentage below the
// current price. The simulator only computes and reports the trigger
// price; no resting order is created.
type StopLoss struct {
	Symbol  Symbol
	Percent decimal.Decimal
}

// Unrecognized is returned for input the grammar cannot interpret.
type Unrecognized struct {
	RawText string
}

func (QuoteRequest) intent() {}
func (PlaceOrder) intent()   {}
func (StopLoss) intent()     {}
func (Unrecognized) intent() {}
