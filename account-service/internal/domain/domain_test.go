package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/corebank/banking/shared/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyBalance(t *testing.T) {
	tests := []struct {
		name    string
		current string
		amount  string
		kind    models.EntryType
		want    string
		wantErr error
	}{
		{name: "credit adds", current: "0", amount: "100", kind: models.EntryTypeCredit, want: "100"},
		{name: "credit keeps precision", current: "10.10", amount: "0.2", kind: models.EntryTypeCredit, want: "10.3"},
		{name: "debit subtracts", current: "100", amount: "40", kind: models.EntryTypeDebit, want: "60"},
		{name: "debit to exactly zero", current: "50", amount: "50", kind: models.EntryTypeDebit, want: "0"},
		{name: "debit over balance", current: "50", amount: "80", kind: models.EntryTypeDebit, want: "50", wantErr: ErrInsufficientFunds},
		{name: "zero credit is a no-op", current: "5", amount: "0", kind: models.EntryTypeCredit, want: "5"},
		{name: "negative amount", current: "5", amount: "-1", kind: models.EntryTypeCredit, want: "5", wantErr: ErrInvariantViolation},
		{name: "unknown kind", current: "5", amount: "1", kind: "TRANSFER", want: "5", wantErr: ErrInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyBalance(d(tt.current), d(tt.amount), tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	cause := &LedgerTransportError{Op: "append", Err: errors.New("connection reset")}

	failed := fmt.Errorf("open: %w", &AccountCreationFailedError{AccountID: 7, Cause: cause})
	var creation *AccountCreationFailedError
	require.ErrorAs(t, failed, &creation)
	assert.Equal(t, int64(7), creation.AccountID)
	var transport *LedgerTransportError
	assert.ErrorAs(t, failed, &transport)

	orphan := &CompensationFailedError{AccountID: 7, Cause: cause, CompensationErr: ErrAccountNotFound}
	assert.ErrorIs(t, orphan, ErrAccountNotFound)
	assert.ErrorAs(t, orphan, &transport)
	assert.False(t, errors.As(orphan, &creation))
	assert.Contains(t, orphan.Error(), "orphaned")

	status := &LedgerTransportError{Op: "list", StatusCode: 503}
	assert.Equal(t, "ledger list: unexpected status 503", status.Error())
}
