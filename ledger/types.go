/*
Package ledger is the double-entry bookkeeping core.

PURPOSE:
  This package contains the correctness-critical accounting engine: a
  chart of accounts (Registry), an atomic transaction journal (Journal),
  derived balance math (Calculator), reversal (Reverser), and the trial
  balance audit check (Reporter). Everything around it - donation
  workflows, bookings, referrals - is a caller that submits transaction
  requests and reads balances back.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: fixed-point monetary amount (never floating point)
  - Account: one entry in the chart of accounts
  - Transaction: an immutable, balanced group of entries
  - Entry: a single debit or credit posting
  - Leg: caller-facing (account, direction, amount) triple

DESIGN PRINCIPLES:
  1. Immutability: entries and committed transactions are never edited,
     only offset by reversal transactions
  2. Precision: uses decimal.Decimal; debit/credit equality is exact,
     no epsilon
  3. Type safety: account and transaction codes are distinct string types
  4. Auditability: every transaction carries a description, an optional
     reference to the originating business object, and a unique code

SEE ALSO:
  - journal.go: validation and atomic commit
  - balance.go: sign convention and balance calculation
  - store.go: persistence contracts
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point monetary amount
// =============================================================================

// Money is a fixed-point monetary amount. Single currency; the sign
// carries meaning only in derived balances - entry amounts themselves
// are always strictly positive.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Value: d} }

func MoneyFromInt(n int64) Money { return Money{Value: decimal.NewFromInt(n)} }

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

// MustMoney parses a decimal literal, panicking on malformed input.
// For constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("ledger: invalid money literal: " + s)
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money          { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money                 { return Money{Value: m.Value.Neg()} }
func (m Money) Mul(d decimal.Decimal) Money { return Money{Value: m.Value.Mul(d)} }
func (m Money) Round(places int32) Money   { return Money{Value: m.Value.Round(places)} }
func (m Money) IsZero() bool               { return m.Value.IsZero() }
func (m Money) IsPositive() bool           { return m.Value.IsPositive() }
func (m Money) IsNegative() bool           { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool         { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool   { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool      { return m.Value.LessThan(o.Value) }
func (m Money) String() string             { return m.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountCode string
type TransactionCode string

// CharityID scopes accounts and transactions to a tenant. Empty means
// global: system accounts (cash, fee revenue, clearing) have no charity.
type CharityID string

// =============================================================================
// ACCOUNT - One entry in the chart of accounts
// =============================================================================

// AccountType classifies an account per standard bookkeeping convention.
type AccountType string

const (
	AccountAsset     AccountType = "ASSET"
	AccountLiability AccountType = "LIABILITY"
	AccountEquity    AccountType = "EQUITY"
	AccountRevenue   AccountType = "REVENUE"
	AccountExpense   AccountType = "EXPENSE"
)

// DebitNormal reports whether the account's balance increases with
// debits. ASSET and EXPENSE are debit-normal; LIABILITY, EQUITY and
// REVENUE are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountAsset || t == AccountExpense
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountAsset, AccountLiability, AccountEquity, AccountRevenue, AccountExpense:
		return true
	}
	return false
}

// Account is one row in the chart of accounts.
//
// INVARIANTS:
//   - Code is immutable once created and unique ledger-wide
//   - Accounts with entries are deactivated, never deleted
//   - System accounts (seeded chart) are protected from casual deactivation
type Account struct {
	Code        AccountCode
	Name        string
	Type        AccountType
	CharityID   CharityID   // empty for global/system accounts
	ParentCode  AccountCode // optional hierarchy, e.g. 2000-<charity> under 2000
	Description string
	System      bool
	Active      bool
	CreatedAt   time.Time
}

// =============================================================================
// TRANSACTION - Atomic, balanced group of entries
// =============================================================================

// EntryType is the direction of a posting.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Opposite returns the swapped direction. Used to build reversals.
func (t EntryType) Opposite() EntryType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Abbrev returns the bookkeeper's short form ("Dr"/"Cr") for statements.
func (t EntryType) Abbrev() string {
	if t == Debit {
		return "Dr"
	}
	return "Cr"
}

// TransactionType categorizes the business event behind a transaction.
type TransactionType string

const (
	TxDonationReceived TransactionType = "DONATION_RECEIVED"
	TxDonationRefund   TransactionType = "DONATION_REFUND"
	TxFundAllocated    TransactionType = "FUND_ALLOCATED"
	TxFundDeallocated  TransactionType = "FUND_DEALLOCATED"
	TxFundDisbursed    TransactionType = "FUND_DISBURSED"
	TxFeeCollected     TransactionType = "FEE_COLLECTED"
	TxAdjustment       TransactionType = "ADJUSTMENT"
	TxOpeningBalance   TransactionType = "OPENING_BALANCE"
	TxTransfer         TransactionType = "TRANSFER"
	TxReversal         TransactionType = "REVERSAL"
)

// Reference is a weak back-reference to the business object that caused
// a transaction (a donation, a funding allocation, a booking). Carried
// for audit and traceability only - never an ownership edge.
type Reference struct {
	Type string
	ID   string
}

// Transaction is an immutable, balanced accounting event.
//
// INVARIANTS:
//   - Entries is non-empty; total debits equal total credits exactly
//   - Once committed, nothing changes except the one-way IsReversed flip
//   - Never deleted; corrections happen via reversal transactions
type Transaction struct {
	ID          string // synthetic id (uuid)
	Code        TransactionCode
	Type        TransactionType
	Date        time.Time // business date, may differ from CreatedAt
	Description string
	Reference   *Reference
	CharityID   CharityID
	CreatedBy   string
	TotalAmount Money // sum of debit legs, for display
	Notes       string
	IsReversed  bool
	ReversedBy  TransactionCode // code of the reversing transaction, if any
	ReversalOf  TransactionCode // set on reversal transactions
	CreatedAt   time.Time
	Entries     []Entry
}

// TotalDebits sums the debit legs.
func (t Transaction) TotalDebits() Money {
	total := ZeroMoney()
	for _, e := range t.Entries {
		if e.Type == Debit {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// TotalCredits sums the credit legs.
func (t Transaction) TotalCredits() Money {
	total := ZeroMoney()
	for _, e := range t.Entries {
		if e.Type == Credit {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Balanced reports whether total debits equal total credits exactly.
func (t Transaction) Balanced() bool {
	return t.TotalDebits().Equal(t.TotalCredits())
}

// =============================================================================
// ENTRY - A single immutable debit or credit posting
// =============================================================================

// Entry is one posting within a transaction.
//
// INVARIANTS:
//   - Amount is strictly positive
//   - Belongs to exactly one transaction and one account
//   - Append-only: never updated or deleted individually
type Entry struct {
	ID              string // synthetic id (uuid)
	TransactionID   string
	TransactionCode TransactionCode
	Account         AccountCode
	Type            EntryType
	Amount          Money
	Memo            string
	Date            time.Time // transaction business date, denormalized for as-of reads
	CreatedAt       time.Time // commit time, inherited from the transaction
}

// =============================================================================
// LEG - Caller-facing input for one posting
// =============================================================================

// Leg is the (account, direction, amount) triple callers submit to the
// Journal. The Journal turns validated legs into Entries.
type Leg struct {
	Account AccountCode
	Type    EntryType
	Amount  Money
	Memo    string
}

// DebitLeg builds a debit leg.
func DebitLeg(account AccountCode, amount Money) Leg {
	return Leg{Account: account, Type: Debit, Amount: amount}
}

// CreditLeg builds a credit leg.
func CreditLeg(account AccountCode, amount Money) Leg {
	return Leg{Account: account, Type: Credit, Amount: amount}
}

// WithMemo attaches a per-leg memo.
func (l Leg) WithMemo(memo string) Leg {
	l.Memo = memo
	return l
}

// =============================================================================
// DATE RANGE
// =============================================================================

// DateRange bounds a query by transaction date, inclusive on both ends.
// A zero From or To leaves that end unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
