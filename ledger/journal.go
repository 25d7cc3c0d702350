/*
journal.go - The transaction journal, sole writer of ledger state

PURPOSE:
  Post() and its reversal variant PostReversal() are the only ways
  entries come into existence. Both validate a leg set, generate a
  unique transaction code, and commit the header plus all legs as one
  atomic unit through the store; PostReversal additionally flips the
  original's IsReversed flag inside that same unit.

VALIDATION ORDER (each failure aborts before any write):
  1. Leg shape: at least two legs, at least one debit and one credit
     -> ErrUnbalancedTransaction
  2. Every account exists and is active
     -> ErrUnknownAccount / ErrInactiveAccount
  3. Total debits equal total credits, exact fixed-point comparison
     -> ErrUnbalancedTransaction (UnbalancedError with totals)
  4. Every amount strictly positive
     -> ErrInvalidAmount (AmountError with the offending leg)

CODE GENERATION:
  Codes look like TXN-20250901-00042: a prefix, the posting date, and a
  zero-padded sequence. Uniqueness under concurrent posting is the one
  serialization point in the core: a journal-owned mutex guards a
  per-prefix counter seeded once from the store's max committed code.
  The counter advances even when a commit later fails, so a code handed
  out is never handed out again within a process; after a restart, a
  failed commit's code may be reissued, which is safe because it was
  never visible.

ATOMICITY:
  The store's AppendTransaction provides all-or-nothing visibility. A
  storage failure aborts the whole commit and surfaces to the caller
  wrapped; no partial transaction is ever observable.

SEE ALSO:
  - store.go: AppendTransaction contract
  - reversal.go: builds compensating transactions and posts them here
*/
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCodePrefix is the transaction code prefix used unless overridden.
const DefaultCodePrefix = "TXN"

const codeSuffixWidth = 5

// =============================================================================
// JOURNAL
// =============================================================================

// Journal validates and commits balanced transactions. It is the sole
// mutator of ledger state.
type Journal struct {
	store  Store
	now    func() time.Time
	prefix string

	// Serialization point for code generation. seq holds the next unused
	// suffix per date prefix, seeded lazily from the store.
	mu  sync.Mutex
	seq map[string]int
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithCodePrefix overrides the transaction code prefix.
func WithCodePrefix(prefix string) JournalOption {
	return func(j *Journal) { j.prefix = prefix }
}

// WithClock overrides the clock. For tests.
func WithClock(now func() time.Time) JournalOption {
	return func(j *Journal) { j.now = now }
}

// NewJournal creates a Journal over the given store.
func NewJournal(store Store, opts ...JournalOption) *Journal {
	j := &Journal{
		store:  store,
		now:    time.Now,
		prefix: DefaultCodePrefix,
		seq:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// PostInput describes one transaction to commit.
type PostInput struct {
	Type        TransactionType
	Date        time.Time // business date; zero means "now"
	Description string
	Legs        []Leg
	Reference   *Reference
	CharityID   CharityID
	CreatedBy   string
	Notes       string
	ReversalOf  TransactionCode // set by the reversal engine only
}

// Post validates the leg set and commits it as one transaction.
// Either the whole transaction becomes durably visible or nothing does.
func (j *Journal) Post(ctx context.Context, in PostInput) (Transaction, error) {
	tx, err := j.build(ctx, in)
	if err != nil {
		return Transaction{}, err
	}
	if err := j.store.AppendTransaction(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("commit %s: %w", tx.Code, err)
	}
	return tx, nil
}

// PostReversal validates and commits a compensating transaction and, in
// the same atomic store operation, flips the original's IsReversed flag.
// If the original turns out to be already reversed the whole commit
// fails with ErrAlreadyReversed and nothing is written.
func (j *Journal) PostReversal(ctx context.Context, in PostInput) (Transaction, error) {
	if in.ReversalOf == "" {
		return Transaction{}, fmt.Errorf("reversal without original code")
	}
	tx, err := j.build(ctx, in)
	if err != nil {
		return Transaction{}, err
	}
	if err := j.store.AppendReversal(ctx, tx, in.ReversalOf); err != nil {
		return Transaction{}, fmt.Errorf("commit %s: %w", tx.Code, err)
	}
	return tx, nil
}

// build runs validation and assembles the transaction, code included.
// No writes happen here.
func (j *Journal) build(ctx context.Context, in PostInput) (Transaction, error) {
	if err := j.validate(ctx, in.Legs); err != nil {
		return Transaction{}, err
	}

	now := j.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	code, err := j.nextCode(ctx, now)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:          uuid.NewString(),
		Code:        code,
		Type:        in.Type,
		Date:        date,
		Description: in.Description,
		Reference:   in.Reference,
		CharityID:   in.CharityID,
		CreatedBy:   in.CreatedBy,
		Notes:       in.Notes,
		ReversalOf:  in.ReversalOf,
		CreatedAt:   now,
	}
	for _, leg := range in.Legs {
		tx.Entries = append(tx.Entries, Entry{
			ID:              uuid.NewString(),
			TransactionID:   tx.ID,
			TransactionCode: code,
			Account:         leg.Account,
			Type:            leg.Type,
			Amount:          leg.Amount,
			Memo:            leg.Memo,
			Date:            date,
			CreatedAt:       now,
		})
	}
	tx.TotalAmount = tx.TotalDebits()
	return tx, nil
}

// validate runs the four checks in order. No writes happen before all
// four pass.
func (j *Journal) validate(ctx context.Context, legs []Leg) error {
	// 1. Leg shape
	var debits, credits int
	for _, leg := range legs {
		switch leg.Type {
		case Debit:
			debits++
		case Credit:
			credits++
		default:
			return fmt.Errorf("leg on account %s: invalid entry type %q", leg.Account, leg.Type)
		}
	}
	if len(legs) < 2 || debits == 0 || credits == 0 {
		return fmt.Errorf("%w: need at least one debit and one credit leg", ErrUnbalancedTransaction)
	}

	// 2. Account existence and activity
	seen := make(map[AccountCode]bool, len(legs))
	for _, leg := range legs {
		if seen[leg.Account] {
			continue
		}
		seen[leg.Account] = true
		a, err := j.store.AccountByCode(ctx, leg.Account)
		if err != nil {
			return err
		}
		if !a.Active {
			return &AccountError{Code: leg.Account, Err: ErrInactiveAccount}
		}
	}

	// 3. Exact debit/credit equality
	totalDebits, totalCredits := ZeroMoney(), ZeroMoney()
	for _, leg := range legs {
		if leg.Type == Debit {
			totalDebits = totalDebits.Add(leg.Amount)
		} else {
			totalCredits = totalCredits.Add(leg.Amount)
		}
	}
	if !totalDebits.Equal(totalCredits) {
		return &UnbalancedError{Debits: totalDebits, Credits: totalCredits}
	}

	// 4. Strictly positive amounts
	for _, leg := range legs {
		if !leg.Amount.IsPositive() {
			return &AmountError{Account: leg.Account, Amount: leg.Amount}
		}
	}
	return nil
}

// nextCode hands out the next unique code for the day's prefix.
// The counter only moves forward; failed commits leave gaps, never
// collisions.
func (j *Journal) nextCode(ctx context.Context, now time.Time) (TransactionCode, error) {
	prefix := fmt.Sprintf("%s-%s-", j.prefix, now.Format("20060102"))

	j.mu.Lock()
	defer j.mu.Unlock()

	next, seeded := j.seq[prefix]
	if !seeded {
		max, err := j.store.MaxTransactionCodeByPrefix(ctx, prefix)
		if err != nil {
			return "", fmt.Errorf("seed code sequence: %w", err)
		}
		next = 1
		if max != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(string(max), prefix))
			if err != nil {
				return "", fmt.Errorf("malformed transaction code %q: %w", max, err)
			}
			next = n + 1
		}
	}
	j.seq[prefix] = next + 1

	return TransactionCode(fmt.Sprintf("%s%0*d", prefix, codeSuffixWidth, next)), nil
}

// FindByCode loads a committed transaction with its entries.
func (j *Journal) FindByCode(ctx context.Context, code TransactionCode) (Transaction, error) {
	return j.store.TransactionByCode(ctx, code)
}

// FindByReference loads the transactions recorded against one business
// object, ordered by creation.
func (j *Journal) FindByReference(ctx context.Context, ref Reference) ([]Transaction, error) {
	return j.store.TransactionsByReference(ctx, ref)
}
