package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest known market snapshot for a symbol. It is owned by
// the market cache and replaced wholesale on refresh, never mutated in
// place. Staleness is observable via AsOf.
type Quote struct {
	Symbol    Symbol          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change24h decimal.Decimal `json:"change_24h"` // percent, signed
	Volume    decimal.Decimal `json:"volume"`     // 24h quote volume
	AsOf      time.Time       `json:"as_of"`
}

// Age returns how stale the snapshot is relative to now.
func (q Quote) Age(now time.Time) time.Duration {
	return now.Sub(q.AsOf)
}

// IndicatorSnapshot carries one technical indicator reading alongside a
// plain-language interpretation for speech output.
type IndicatorSnapshot struct {
	Name           string          `json:"name"`
	Value          decimal.Decimal `json:"value"`
	Signal         decimal.Decimal `json:"signal,omitempty"`    // MACD only
	Histogram      decimal.Decimal `json:"histogram,omitempty"` // MACD only
	Upper          decimal.Decimal `json:"upper,omitempty"`     // Bollinger only
	Lower          decimal.Decimal `json:"lower,omitempty"`     // Bollinger only
	Interpretation string          `json:"interpretation"`
}
