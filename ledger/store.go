/*
store.go - Persistence contracts for the ledger core

PURPOSE:
  Defines the interface between the accounting logic and the storage
  medium. The Store keeps the append-only invariant structural: the only
  write paths are account creation, the one-way active flag, the atomic
  transaction commit, and the one-way reversal flip. There is no entry
  update or delete anywhere in the contract.

APPEND-ONLY CONTRACT:
  - AppendTransaction(): header + all entries, all-or-nothing
  - AppendReversal(): same, plus the original's one-way IsReversed flip
    inside the same atomic unit
  - MarkReversed(): the standalone one-way flip; with AppendReversal,
    the only permitted header mutation
  - NO update or delete methods exist for entries or transactions

ATOMICITY:
  AppendTransaction must be atomic: either the transaction header and
  every entry become durably visible together, or nothing does. A failure
  surfaces wrapped in ErrStorageFailure and the Journal aborts the whole
  commit. Concurrent readers never observe a partially-written
  transaction.

IMPLEMENTATIONS:
  - ledger/store/memory.go: in-memory, for tests and embedding
  - store/sqlite/sqlite.go: SQLite (same shape applies to PostgreSQL)

SEE ALSO:
  - journal.go: the sole caller of AppendTransaction
  - balance.go, trial.go: read-only consumers
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// ACCOUNT STORE - Chart of accounts persistence
// =============================================================================

// AccountFilter narrows Accounts listings. Zero value means all accounts.
type AccountFilter struct {
	CharityID  *CharityID // nil: any; pointer to "" matches global accounts
	Type       AccountType
	ActiveOnly bool
	SystemOnly bool
	CodePrefix string
}

// AccountStore persists the chart of accounts.
type AccountStore interface {
	// CreateAccount inserts a new account. Fails with
	// ErrDuplicateAccountCode if the code exists. Codes are immutable:
	// there is no update path for them.
	CreateAccount(ctx context.Context, a Account) error

	// SetAccountActive flips the active flag. The only permitted account
	// mutation; entries are untouched.
	SetAccountActive(ctx context.Context, code AccountCode, active bool) error

	// AccountByCode resolves an account, ErrUnknownAccount if absent.
	AccountByCode(ctx context.Context, code AccountCode) (Account, error)

	// Accounts lists accounts matching the filter, ordered by code.
	Accounts(ctx context.Context, f AccountFilter) ([]Account, error)
}

// =============================================================================
// TRANSACTION STORE - Append-only journal persistence
// =============================================================================

// TransactionStore persists committed transactions and their entries.
type TransactionStore interface {
	// AppendTransaction persists a transaction header and all its entries
	// as one atomic unit. With AppendReversal, the only write path for
	// entries.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// AppendReversal persists tx like AppendTransaction and, in the same
	// atomic unit, flips the original's IsReversed flag to tx.Code.
	// Wholesale: if the original is missing (ErrTransactionNotFound) or
	// already reversed (ErrAlreadyReversed), nothing is written. Two
	// racing reversals of one original commit exactly one transaction.
	AppendReversal(ctx context.Context, tx Transaction, original TransactionCode) error

	// MarkReversed flips IsReversed and records the reversing code.
	// One-way: fails with ErrAlreadyReversed if already set, and with
	// ErrTransactionNotFound if the code does not resolve.
	MarkReversed(ctx context.Context, code, reversedBy TransactionCode) error

	// TransactionByCode loads a transaction with its entries.
	TransactionByCode(ctx context.Context, code TransactionCode) (Transaction, error)

	// TransactionsByReference loads transactions tagged with the given
	// business reference, ordered by creation.
	TransactionsByReference(ctx context.Context, ref Reference) ([]Transaction, error)

	// TransactionsInRange loads transactions by business date, newest
	// first, optionally charity-scoped.
	TransactionsInRange(ctx context.Context, charity *CharityID, from, to time.Time) ([]Transaction, error)

	// MaxTransactionCodeByPrefix returns the lexicographically greatest
	// committed code with the given prefix, or "" if none. Seeds code
	// generation; the Journal owns the actual next-value decision.
	MaxTransactionCodeByPrefix(ctx context.Context, prefix string) (TransactionCode, error)
}

// =============================================================================
// ENTRY READER - Read-only access to postings
// =============================================================================

// EntryReader exposes the entry store to balance and audit reads.
// Re-querying yields entries written up to that point, never altered.
type EntryReader interface {
	// EntriesForAccount returns the account's entries ordered by
	// creation, optionally bounded by transaction date.
	EntriesForAccount(ctx context.Context, code AccountCode, r *DateRange) ([]Entry, error)

	// LastEntryForAccount returns the most recent entry by creation
	// order, or nil if the account has none.
	LastEntryForAccount(ctx context.Context, code AccountCode) (*Entry, error)

	// SumEntries returns the raw unsigned total of the account's entries
	// of one direction, independent of account type.
	SumEntries(ctx context.Context, code AccountCode, t EntryType) (Money, error)

	// EntryTotals returns ledger-wide debit and credit totals, optionally
	// scoped to entries whose transaction belongs to the given charity.
	EntryTotals(ctx context.Context, charity *CharityID) (debits, credits Money, err error)
}

// =============================================================================
// STORE - Full persistence surface
// =============================================================================

// Store is the complete persistence contract the engine runs on.
type Store interface {
	AccountStore
	TransactionStore
	EntryReader
}
