/*
reversal.go - Compensating transactions

PURPOSE:
  History is never edited. A mistake is corrected by posting a new
  transaction whose legs are the original's with debit and credit
  swapped - same accounts, same amounts. The original and the reversal
  both remain permanently visible; their net effect on every balance is
  zero.

GUARANTEES:
  - A correctly-swapped leg set is balanced by construction, so the
    reversal inherits and passes all Journal validation.
  - The reversal commit and the original's one-way IsReversed flip are
    one atomic store operation. Reversing twice fails with
    ErrAlreadyReversed, and the loser of a concurrent race commits
    nothing: balances are never offset more than once.
*/
package ledger

import (
	"context"
	"fmt"
)

// ReferenceLedgerTransaction tags a reversal with the code of the
// transaction it offsets.
const ReferenceLedgerTransaction = "LEDGER_TRANSACTION"

// Reverser produces compensating transactions through the Journal.
type Reverser struct {
	store   Store
	journal *Journal
}

// NewReverser creates a Reverser posting through the given journal.
func NewReverser(store Store, journal *Journal) *Reverser {
	return &Reverser{store: store, journal: journal}
}

// Reverse posts a compensating transaction for the given code and flips
// the original's IsReversed flag.
// Fails with ErrTransactionNotFound if the code does not resolve and
// with ErrAlreadyReversed if the original was already reversed.
func (r *Reverser) Reverse(ctx context.Context, code TransactionCode) (Transaction, error) {
	orig, err := r.store.TransactionByCode(ctx, code)
	if err != nil {
		return Transaction{}, err
	}
	if orig.IsReversed {
		return Transaction{}, fmt.Errorf("transaction %s: %w", code, ErrAlreadyReversed)
	}

	legs := make([]Leg, 0, len(orig.Entries))
	for _, e := range orig.Entries {
		legs = append(legs, Leg{
			Account: e.Account,
			Type:    e.Type.Opposite(),
			Amount:  e.Amount,
			Memo:    fmt.Sprintf("Reversal of %s", code),
		})
	}

	// PostReversal flips the original's flag in the same atomic unit as
	// the commit, so a concurrent reversal of the same code loses
	// wholesale instead of double-offsetting the balances.
	return r.journal.PostReversal(ctx, PostInput{
		Type:        TxReversal,
		Description: fmt.Sprintf("Reversal of %s: %s", code, orig.Description),
		Legs:        legs,
		Reference:   &Reference{Type: ReferenceLedgerTransaction, ID: string(code)},
		CharityID:   orig.CharityID,
		ReversalOf:  code,
	})
}
