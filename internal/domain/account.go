package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account maps asset codes to non-negative balances for a single user.
// It is owned exclusively by the ledger; callers receive copies.
type Account struct {
	UserID   string                     `json:"user_id"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

// NewAccount creates an empty account for a user.
func NewAccount(userID string) *Account {
	return &Account{
		UserID:   userID,
		Balances: make(map[string]decimal.Decimal),
	}
}

// Balance returns the balance for an asset, zero if absent.
func (a *Account) Balance(asset string) decimal.Decimal {
	bal, ok := a.Balances[asset]
	if !ok {
		return decimal.Zero
	}
	return bal
}

// Credit adds amount to an asset balance. Amount must not be negative.
func (a *Account) Credit(asset string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit %s %s: negative amount", asset, amount)
	}
	a.Balances[asset] = a.Balance(asset).Add(amount)
	return nil
}

// Debit subtracts amount from an asset balance. It refuses to drive the
// balance negative; the caller is expected to have checked sufficiency
// under the user's lock before calling.
func (a *Account) Debit(asset string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s %s: negative amount", asset, amount)
	}
	next := a.Balance(asset).Sub(amount)
	if next.IsNegative() {
		return &LedgerInconsistencyError{
			UserID: a.UserID,
			Asset:  asset,
			Detail: fmt.Sprintf("debit of %s would leave balance %s", amount, next),
		}
	}
	a.Balances[asset] = next
	return nil
}

// VerifyInvariant checks that every balance is non-negative. A violation
// can only come from a ledger bug and is reported as a
// LedgerInconsistencyError.
func (a *Account) VerifyInvariant() error {
	for asset, bal := range a.Balances {
		if bal.IsNegative() {
			return &LedgerInconsistencyError{
				UserID: a.UserID,
				Asset:  asset,
				Detail: fmt.Sprintf("negative balance %s", bal),
			}
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to readers.
func (a *Account) Clone() *Account {
	cp := NewAccount(a.UserID)
	for asset, bal := range a.Balances {
		cp.Balances[asset] = bal
	}
	return cp
}
