// Package store provides an in-memory ledger.Store implementation for
// tests and embedding. All reads under RLock observe a consistent
// snapshot; AppendTransaction publishes header and entries under one write
// lock so no reader ever sees a partial transaction.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/charity-ledger/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	accounts     map[ledger.AccountCode]ledger.Account
	transactions map[ledger.TransactionCode]ledger.Transaction
	txOrder      []ledger.TransactionCode
	byAccount    map[ledger.AccountCode][]ledger.Entry // creation order
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[ledger.AccountCode]ledger.Account),
		transactions: make(map[ledger.TransactionCode]ledger.Transaction),
		byAccount:    make(map[ledger.AccountCode][]ledger.Entry),
	}
}

// -----------------------------------------------------------------------------
// AccountStore
// -----------------------------------------------------------------------------

func (m *Memory) CreateAccount(_ context.Context, a ledger.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[a.Code]; exists {
		return &ledger.AccountError{Code: a.Code, Err: ledger.ErrDuplicateAccountCode}
	}
	m.accounts[a.Code] = a
	return nil
}

func (m *Memory) SetAccountActive(_ context.Context, code ledger.AccountCode, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, exists := m.accounts[code]
	if !exists {
		return &ledger.AccountError{Code: code, Err: ledger.ErrUnknownAccount}
	}
	a.Active = active
	m.accounts[code] = a
	return nil
}

func (m *Memory) AccountByCode(_ context.Context, code ledger.AccountCode) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, exists := m.accounts[code]
	if !exists {
		return ledger.Account{}, &ledger.AccountError{Code: code, Err: ledger.ErrUnknownAccount}
	}
	return a, nil
}

func (m *Memory) Accounts(_ context.Context, f ledger.AccountFilter) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Account
	for _, a := range m.accounts {
		if f.CharityID != nil && a.CharityID != *f.CharityID {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.ActiveOnly && !a.Active {
			continue
		}
		if f.SystemOnly && !a.System {
			continue
		}
		if f.CodePrefix != "" && !strings.HasPrefix(string(a.Code), f.CodePrefix) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// -----------------------------------------------------------------------------
// TransactionStore
// -----------------------------------------------------------------------------

// AppendTransaction publishes the header and every entry under one
// write lock: all-or-nothing by construction.
func (m *Memory) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(tx)
}

// AppendReversal publishes the reversal and flips the original's
// IsReversed flag under the same write lock. A concurrent reversal
// loses wholesale: its transaction is never stored.
func (m *Memory) AppendReversal(_ context.Context, tx ledger.Transaction, original ledger.TransactionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orig, exists := m.transactions[original]
	if !exists {
		return fmt.Errorf("transaction %s: %w", original, ledger.ErrTransactionNotFound)
	}
	if orig.IsReversed {
		return fmt.Errorf("transaction %s: %w", original, ledger.ErrAlreadyReversed)
	}
	if err := m.appendLocked(tx); err != nil {
		return err
	}
	orig.IsReversed = true
	orig.ReversedBy = tx.Code
	m.transactions[original] = orig
	return nil
}

func (m *Memory) appendLocked(tx ledger.Transaction) error {
	if _, exists := m.transactions[tx.Code]; exists {
		return fmt.Errorf("%w: duplicate transaction code %s", ledger.ErrStorageFailure, tx.Code)
	}

	tx.Entries = append([]ledger.Entry(nil), tx.Entries...)
	m.transactions[tx.Code] = tx
	m.txOrder = append(m.txOrder, tx.Code)
	for _, e := range tx.Entries {
		m.byAccount[e.Account] = append(m.byAccount[e.Account], e)
	}
	return nil
}

func (m *Memory) MarkReversed(_ context.Context, code, reversedBy ledger.TransactionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, exists := m.transactions[code]
	if !exists {
		return fmt.Errorf("transaction %s: %w", code, ledger.ErrTransactionNotFound)
	}
	if tx.IsReversed {
		return fmt.Errorf("transaction %s: %w", code, ledger.ErrAlreadyReversed)
	}
	tx.IsReversed = true
	tx.ReversedBy = reversedBy
	m.transactions[code] = tx
	return nil
}

func (m *Memory) TransactionByCode(_ context.Context, code ledger.TransactionCode) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, exists := m.transactions[code]
	if !exists {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", code, ledger.ErrTransactionNotFound)
	}
	tx.Entries = append([]ledger.Entry(nil), tx.Entries...)
	return tx, nil
}

func (m *Memory) TransactionsByReference(_ context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, code := range m.txOrder {
		tx := m.transactions[code]
		if tx.Reference != nil && tx.Reference.Type == ref.Type && tx.Reference.ID == ref.ID {
			tx.Entries = append([]ledger.Entry(nil), tx.Entries...)
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *Memory) TransactionsInRange(_ context.Context, charity *ledger.CharityID, from, to time.Time) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Transaction
	for _, code := range m.txOrder {
		tx := m.transactions[code]
		if charity != nil && tx.CharityID != *charity {
			continue
		}
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		tx.Entries = append([]ledger.Entry(nil), tx.Entries...)
		result = append(result, tx)
	}
	// Newest first.
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *Memory) MaxTransactionCodeByPrefix(_ context.Context, prefix string) (ledger.TransactionCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var max ledger.TransactionCode
	for code := range m.transactions {
		if strings.HasPrefix(string(code), prefix) && code > max {
			max = code
		}
	}
	return max, nil
}

// -----------------------------------------------------------------------------
// EntryReader
// -----------------------------------------------------------------------------

func (m *Memory) EntriesForAccount(_ context.Context, code ledger.AccountCode, r *ledger.DateRange) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.Entry
	for _, e := range m.byAccount[code] {
		if r != nil && !r.Contains(e.Date) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *Memory) LastEntryForAccount(_ context.Context, code ledger.AccountCode) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.byAccount[code]
	if len(entries) == 0 {
		return nil, nil
	}
	last := entries[len(entries)-1]
	return &last, nil
}

func (m *Memory) SumEntries(_ context.Context, code ledger.AccountCode, t ledger.EntryType) (ledger.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := ledger.ZeroMoney()
	for _, e := range m.byAccount[code] {
		if e.Type == t {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *Memory) EntryTotals(_ context.Context, charity *ledger.CharityID) (ledger.Money, ledger.Money, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	debits, credits := ledger.ZeroMoney(), ledger.ZeroMoney()
	for _, code := range m.txOrder {
		tx := m.transactions[code]
		if charity != nil && tx.CharityID != *charity {
			continue
		}
		for _, e := range tx.Entries {
			if e.Type == ledger.Debit {
				debits = debits.Add(e.Amount)
			} else {
				credits = credits.Add(e.Amount)
			}
		}
	}
	return debits, credits, nil
}
