// trial.go - Trial balance reporting.
//
// Every committed transaction is individually balanced, so equal
// ledger-wide debit and credit totals is a derived property, not a
// separately enforced one. The reporter surfaces the pair for audit.
package ledger

import "context"

// TrialBalance is the audit pair: total debits and total credits across
// the whole ledger or one charity's transactions.
type TrialBalance struct {
	CharityID    *CharityID // nil for the global report
	TotalDebits  Money
	TotalCredits Money
}

// Balanced reports the fundamental invariant.
func (t TrialBalance) Balanced() bool {
	return t.TotalDebits.Equal(t.TotalCredits)
}

// Difference returns debits minus credits. Zero on a healthy ledger.
func (t TrialBalance) Difference() Money {
	return t.TotalDebits.Sub(t.TotalCredits)
}

// Reporter computes trial balances from the entry store.
type Reporter struct {
	store Store
}

// NewReporter creates a Reporter over the given store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// TrialBalance sums all entries, optionally scoped to entries whose
// transaction belongs to the given charity. Holds equal for an empty
// ledger too: both totals are zero.
func (r *Reporter) TrialBalance(ctx context.Context, charity *CharityID) (TrialBalance, error) {
	debits, credits, err := r.store.EntryTotals(ctx, charity)
	if err != nil {
		return TrialBalance{}, err
	}
	return TrialBalance{CharityID: charity, TotalDebits: debits, TotalCredits: credits}, nil
}
