/*
balance.go - Balance calculation and account statements

PURPOSE:
  Derives per-account balances from the entry store. All values here are
  computed, never stored: the entry log is the single source of truth
  and a balance can always be re-derived from scratch.

SIGN CONVENTION:
  ASSET and EXPENSE accounts are debit-normal:
    balance = sum(debits) - sum(credits)
  LIABILITY, EQUITY and REVENUE accounts are credit-normal:
    balance = sum(credits) - sum(debits)

  Confirmed against the real chart of accounts: a cash account with
  entries Dr 100, Cr 30 holds 70; a revenue account with Cr 100, Dr 10
  holds 90.

SEE ALSO:
  - trial.go: ledger-wide debit/credit totals
  - store.go: EntryReader contract
*/
package ledger

import (
	"context"
	"sort"
	"time"
)

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator derives balances from the entry store.
type Calculator struct {
	store Store
}

// NewCalculator creates a Calculator over the given store.
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store}
}

// Balance returns the account's current balance under its type's sign
// convention, computed from all entries to date.
func (c *Calculator) Balance(ctx context.Context, code AccountCode) (Money, error) {
	a, err := c.store.AccountByCode(ctx, code)
	if err != nil {
		return Money{}, err
	}
	debits, err := c.store.SumEntries(ctx, code, Debit)
	if err != nil {
		return Money{}, err
	}
	credits, err := c.store.SumEntries(ctx, code, Credit)
	if err != nil {
		return Money{}, err
	}
	if a.Type.DebitNormal() {
		return debits.Sub(credits), nil
	}
	return credits.Sub(debits), nil
}

// BalanceAsOf returns the balance restricted to entries whose
// transaction date is on or before asOf.
func (c *Calculator) BalanceAsOf(ctx context.Context, code AccountCode, asOf time.Time) (Money, error) {
	a, err := c.store.AccountByCode(ctx, code)
	if err != nil {
		return Money{}, err
	}
	entries, err := c.store.EntriesForAccount(ctx, code, &DateRange{To: asOf})
	if err != nil {
		return Money{}, err
	}
	balance := ZeroMoney()
	for _, e := range entries {
		balance = balance.Add(signedDelta(a.Type, e))
	}
	return balance, nil
}

// SumDebits returns the raw unsigned debit total, independent of the
// account's type. Used by the trial balance reporter.
func (c *Calculator) SumDebits(ctx context.Context, code AccountCode) (Money, error) {
	return c.store.SumEntries(ctx, code, Debit)
}

// SumCredits returns the raw unsigned credit total.
func (c *Calculator) SumCredits(ctx context.Context, code AccountCode) (Money, error) {
	return c.store.SumEntries(ctx, code, Credit)
}

// signedDelta is the entry's effect on its account's balance under the
// sign convention.
func signedDelta(t AccountType, e Entry) Money {
	if (e.Type == Debit) == t.DebitNormal() {
		return e.Amount
	}
	return e.Amount.Neg()
}

// =============================================================================
// STATEMENT - Ordered entries with a running balance column
// =============================================================================

// StatementLine is one row of an account statement.
type StatementLine struct {
	Entry   Entry
	Running Money // balance after this entry, sign convention applied
}

// Statement is a per-account activity report for a date range.
type Statement struct {
	Account Account
	Range   DateRange
	Opening Money // balance before the first line
	Lines   []StatementLine
	Closing Money // balance after the last line; equals Opening if empty
}

// Statement builds the account's statement for the given range. A nil
// range covers all history. The running column is derived from the full
// entry history, walked in business-date order (creation order breaks
// ties), so that a bounded statement opens at the true balance and a
// backdated posting lands in the opening balance, not mid-statement.
func (c *Calculator) Statement(ctx context.Context, code AccountCode, r *DateRange) (Statement, error) {
	a, err := c.store.AccountByCode(ctx, code)
	if err != nil {
		return Statement{}, err
	}
	entries, err := c.store.EntriesForAccount(ctx, code, nil)
	if err != nil {
		return Statement{}, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	s := Statement{Account: a}
	if r != nil {
		s.Range = *r
	}

	running := ZeroMoney()
	for _, e := range entries {
		delta := signedDelta(a.Type, e)
		if r != nil && !r.From.IsZero() && e.Date.Before(r.From) {
			// Pre-range entries fold into the opening balance.
			running = running.Add(delta)
			continue
		}
		if r != nil && !r.To.IsZero() && e.Date.After(r.To) {
			continue
		}
		if len(s.Lines) == 0 {
			s.Opening = running
		}
		running = running.Add(delta)
		s.Lines = append(s.Lines, StatementLine{Entry: e, Running: running})
	}
	if len(s.Lines) == 0 {
		s.Opening = running
	}
	s.Closing = running
	return s, nil
}
