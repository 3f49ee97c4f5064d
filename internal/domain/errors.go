package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// RejectKind classifies why a command was rejected. All kinds except
// RejectLedgerInconsistency are expected, user-facing outcomes.
type RejectKind string

const (
	RejectUnparseableCommand    RejectKind = "unparseable_command"
	RejectUnknownSymbol         RejectKind = "unknown_symbol"
	RejectMarketDataUnavailable RejectKind = "market_data_unavailable"
	RejectInsufficientFunds     RejectKind = "insufficient_funds"
	RejectInsufficientInventory RejectKind = "insufficient_inventory"
	RejectLedgerInconsistency   RejectKind = "ledger_inconsistency"
)

var (
	// ErrUnparseableCommand is returned when the parser yields Unrecognized.
	ErrUnparseableCommand = errors.New("command not recognized")

	// ErrUnknownSymbol is returned when a symbol is not in the supported set.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrMarketDataUnavailable is returned when a symbol is supported but no
	// quote is cached for it. Distinct from ErrUnknownSymbol.
	ErrMarketDataUnavailable = errors.New("market data unavailable")
)

// InsufficientFundsError reports a buy that the quote-asset balance cannot
// cover.
type InsufficientFundsError struct {
	Asset     string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: need %s, have %s",
		e.Asset, e.Required, e.Available)
}

// Shortfall returns how much is missing.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// InsufficientInventoryError reports a sell that the base-asset balance
// cannot cover.
type InsufficientInventoryError struct {
	Asset     string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient %s inventory: need %s, have %s",
		e.Asset, e.Required, e.Available)
}

// Shortfall returns how much is missing.
func (e *InsufficientInventoryError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// LedgerInconsistencyError indicates an invariant breach inside the
// ledger. It is fatal for the mutation that detected it: the mutation must
// be aborted, never partially applied, and the error surfaced loudly.
type LedgerInconsistencyError struct {
	UserID string
	Asset  string
	Detail string
}

func (e *LedgerInconsistencyError) Error() string {
	return fmt.Sprintf("ledger inconsistency for user %s asset %s: %s",
		e.UserID, e.Asset, e.Detail)
}

// ClassifyError maps an engine/ledger error to its RejectKind.
func ClassifyError(err error) RejectKind {
	var funds *InsufficientFundsError
	var inv *InsufficientInventoryError
	var incons *LedgerInconsistencyError

	switch {
	case errors.Is(err, ErrUnparseableCommand):
		return RejectUnparseableCommand
	case errors.Is(err, ErrUnknownSymbol):
		return RejectUnknownSymbol
	case errors.Is(err, ErrMarketDataUnavailable):
		return RejectMarketDataUnavailable
	case errors.As(err, &funds):
		return RejectInsufficientFunds
	case errors.As(err, &inv):
		return RejectInsufficientInventory
	case errors.As(err, &incons):
		return RejectLedgerInconsistency
	default:
		return RejectLedgerInconsistency
	}
}
