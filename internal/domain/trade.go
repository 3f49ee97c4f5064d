package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus is the terminal state of a trade record. The simulator
// never talks to a real exchange, so every settled trade is created
// already-terminal with StatusSimulated.
type TradeStatus string

const (
	StatusSimulated TradeStatus = "simulated"
	StatusRejected  TradeStatus = "rejected"
)

// Trade is one append-only entry in a user's trade history. Once created
// it is immutable.
type Trade struct {
	ID         string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	Symbol     Symbol          `json:"symbol"`
	Side       Side            `json:"side"`
	Kind       OrderKind       `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"total_value"` // notional: quantity * price
	Fee        decimal.Decimal `json:"fee"`
	Status     TradeStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TradeStats aggregates a user's trading activity.
type TradeStats struct {
	TotalTrades int             `json:"total_trades"`
	BuyCount    int             `json:"buy_count"`
	SellCount   int             `json:"sell_count"`
	TotalValue  decimal.Decimal `json:"total_value"`
	TotalFees   decimal.Decimal `json:"total_fees"`
}
