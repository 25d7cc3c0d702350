/*
errors.go - Centralized error taxonomy for the ledger core

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Validation failures are detected before any write and are recoverable
  by the caller (fix input, retry); they never leave partial state.
  Storage failures abort the enclosing commit entirely.

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, ledger.ErrUnbalancedTransaction) { ... }

    var ub *ledger.UnbalancedError
    if errors.As(err, &ub) {
        fmt.Println(ub.Debits, ub.Credits)
    }

SEE ALSO:
  - journal.go: produces the validation errors in order
  - store.go: storage contract, ErrStorageFailure semantics
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnbalancedTransaction is returned when a leg set has fewer than
	// two legs, lacks a debit or a credit, or when total debits do not
	// equal total credits exactly.
	ErrUnbalancedTransaction = errors.New("unbalanced transaction")

	// ErrInvalidAmount is returned when a leg amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownAccount is returned when a referenced account code does
	// not exist in the chart of accounts.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrInactiveAccount is returned when a leg references a deactivated
	// account.
	ErrInactiveAccount = errors.New("inactive account")

	// ErrDuplicateAccountCode is returned when creating an account whose
	// code already exists. Account codes are unique ledger-wide.
	ErrDuplicateAccountCode = errors.New("duplicate account code")

	// ErrInvalidAccountCode is returned when an account code is empty or
	// fails the registry's configured format check.
	ErrInvalidAccountCode = errors.New("invalid account code")

	// ErrAlreadyReversed is returned when reversing a transaction whose
	// IsReversed flag is already set. The flip is one-way.
	ErrAlreadyReversed = errors.New("transaction already reversed")

	// ErrTransactionNotFound is returned when a transaction code does not
	// resolve.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrProtectedAccount is returned when deactivating a system account
	// without the override flag.
	ErrProtectedAccount = errors.New("protected system account")

	// ErrStorageFailure wraps an underlying storage error. The enclosing
	// commit is aborted as a whole; no partial transaction is ever left
	// visible.
	ErrStorageFailure = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnbalancedError reports the mismatched totals of a rejected leg set.
type UnbalancedError struct {
	Debits  Money
	Credits Money
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("unbalanced transaction: debits %s, credits %s", e.Debits, e.Credits)
}

func (e *UnbalancedError) Unwrap() error { return ErrUnbalancedTransaction }

// AmountError reports the offending leg of a non-positive amount.
type AmountError struct {
	Account AccountCode
	Amount  Money
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("invalid amount %s on account %s: must be strictly positive", e.Amount, e.Account)
}

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// AccountError reports which account code triggered an account-level
// failure (unknown, inactive, duplicate, protected).
type AccountError struct {
	Code AccountCode
	Err  error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("account %s: %v", e.Code, e.Err)
}

func (e *AccountError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is a validation failure the
// caller can fix and retry. These never leave partial state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnbalancedTransaction) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrInactiveAccount) ||
		errors.Is(err, ErrDuplicateAccountCode) ||
		errors.Is(err, ErrInvalidAccountCode) ||
		errors.Is(err, ErrAlreadyReversed) ||
		errors.Is(err, ErrProtectedAccount)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrTransactionNotFound)
}
