package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStorage            = errors.New("storage failure")
	// ErrCreditTooLow rejects an account opening whose initial credit is not positive.
	ErrCreditTooLow = errors.New("initial credit must be greater than zero")
)

// LedgerTransportError means the ledger call did not complete: the request
// failed, timed out, was refused by the breaker, or got a non-2xx status.
// StatusCode is 0 when no response was received.
type LedgerTransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *LedgerTransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ledger %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("ledger %s: transport failure: %v", e.Op, e.Err)
}

func (e *LedgerTransportError) Unwrap() error { return e.Err }

// LedgerProtocolError means the ledger answered 2xx with an empty or
// unparseable body.
type LedgerProtocolError struct {
	Op  string
	Err error
}

func (e *LedgerProtocolError) Error() string {
	return fmt.Sprintf("ledger %s: bad response: %v", e.Op, e.Err)
}

func (e *LedgerProtocolError) Unwrap() error { return e.Err }

// AccountCreationFailedError is returned when an account was created and then
// removed again by compensation.
type AccountCreationFailedError struct {
	AccountID int64
	Cause     error
}

func (e *AccountCreationFailedError) Error() string {
	return fmt.Sprintf("account creation failed, account %d rolled back: %v", e.AccountID, e.Cause)
}

func (e *AccountCreationFailedError) Unwrap() error { return e.Cause }

// CompensationFailedError is returned when compensation could not remove the
// account. The account is orphaned and needs manual reconciliation.
type CompensationFailedError struct {
	AccountID       int64
	Cause           error
	CompensationErr error
}

func (e *CompensationFailedError) Error() string {
	return fmt.Sprintf("account %d orphaned: %v; compensation failed: %v", e.AccountID, e.Cause, e.CompensationErr)
}

func (e *CompensationFailedError) Unwrap() []error {
	return []error{e.Cause, e.CompensationErr}
}
