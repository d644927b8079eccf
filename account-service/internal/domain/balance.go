package domain

import (
	"fmt"

	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
)

// ApplyBalance returns the balance after applying amount of the given kind.
// amount must not be negative. A DEBIT never takes the balance below zero.
func ApplyBalance(current, amount decimal.Decimal, kind models.EntryType) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return current, fmt.Errorf("%w: negative amount %s", ErrInvariantViolation, amount)
	}

	switch kind {
	case models.EntryTypeCredit:
		return current.Add(amount), nil
	case models.EntryTypeDebit:
		if current.LessThan(amount) {
			return current, ErrInsufficientFunds
		}
		return current.Sub(amount), nil
	default:
		return current, fmt.Errorf("%w: unknown entry type %q", ErrInvariantViolation, kind)
	}
}
