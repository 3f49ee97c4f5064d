package domain

import "github.com/shopspring/decimal"

// Action tells the UI layer what kind of payload a CommandResult carries.
type Action string

const (
	ActionQuote Action = "quote"
	ActionTrade Action = "trade"
	ActionError Action = "error"
	ActionInfo  Action = "info"
)

// CommandResult is the structured outcome of one interpreted command.
// It is ephemeral: consumed by the response formatter and the UI, never
// persisted. Data holds the typed payload for the action: a Quote for
// ActionQuote, a Trade for ActionTrade, a StopLossInfo for ActionInfo.
type CommandResult struct {
	Intent       Intent     `json:"-"`
	Action       Action     `json:"action"`
	RejectKind   RejectKind `json:"reject_kind,omitempty"`
	Err          error      `json:"-"`
	Data         any        `json:"data,omitempty"`
	ResponseText string     `json:"response"`
}

// QuoteData is the ActionQuote payload: the snapshot plus an optional
// indicator reading.
type QuoteData struct {
	Quote     Quote              `json:"quote"`
	Indicator *IndicatorSnapshot `json:"indicator,omitempty"`
}

// StopLossInfo is the ActionInfo payload for a stop-loss command.
type StopLossInfo struct {
	Symbol       Symbol          `json:"symbol"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Percent      decimal.Decimal `json:"percent"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
}
