/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists the chart of accounts, the transaction journal, and the entry
  log using SQLite. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE or DELETE statements exist for the entries table
  - The only mutation of the transactions table is the one-way
    is_reversed flip (MarkReversed, and AppendReversal's combined form)
  - Corrections happen via reversal transactions only

ATOMICITY:
  AppendTransaction writes the header and all entries inside a single
  database transaction: either everything commits or everything rolls
  back, and readers never observe a partial write. AppendReversal
  additionally flips the original's is_reversed flag in that same
  database transaction, so a reversal can never commit without marking
  its original. Any driver error surfaces wrapped in
  ledger.ErrStorageFailure.

PRECISION:
  Amounts are stored as exact decimal strings and summed in Go with
  shopspring/decimal. SQL-level SUM() is never used on amounts - SQLite
  would fall back to floating point.

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging): readers don't
  block, one writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/books.db")
  if err != nil { ... }
  defer store.Close()
  journal := ledger.NewJournal(store)

SEE ALSO:
  - ledger/store.go: interface contracts
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/charity-ledger/ledger"
)

// Store implements ledger.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; SQLite allows one writer at a time
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Chart of accounts
	CREATE TABLE IF NOT EXISTS accounts (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		account_type TEXT NOT NULL,
		charity_id TEXT NOT NULL DEFAULT '',
		parent_code TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_charity
		ON accounts(charity_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_type
		ON accounts(account_type);

	-- Transaction headers (append-only; is_reversed is the one mutable column)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		tx_type TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		description TEXT NOT NULL,
		reference_type TEXT,
		reference_id TEXT,
		charity_id TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		total_amount TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		is_reversed BOOLEAN NOT NULL DEFAULT FALSE,
		reversed_by TEXT NOT NULL DEFAULT '',
		reversal_of TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(tx_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_charity_date
		ON transactions(charity_id, tx_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_type, reference_id)
		WHERE reference_type IS NOT NULL;

	-- Entries (append-only, no UPDATE or DELETE path exists)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL REFERENCES transactions(id),
		transaction_code TEXT NOT NULL,
		account_code TEXT NOT NULL REFERENCES accounts(code),
		entry_type TEXT NOT NULL CHECK (entry_type IN ('DEBIT', 'CREDIT')),
		amount TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		tx_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Balance calculation hot path
	CREATE INDEX IF NOT EXISTS idx_entries_account
		ON entries(account_code, entry_type);
	CREATE INDEX IF NOT EXISTS idx_entries_account_date
		ON entries(account_code, tx_date);
	CREATE INDEX IF NOT EXISTS idx_entries_transaction
		ON entries(transaction_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// timeLayout is fixed-width (zero-padded nanoseconds, forced UTC) so
// that lexicographic order of stored strings equals time order. Every
// tx_date comparison and ORDER BY in this file depends on that.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ledger.ErrStorageFailure, err)
}

// =============================================================================
// ACCOUNT STORE
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE code = ?`, string(a.Code)).Scan(&exists)
	if err != nil {
		return storageErr("create account", err)
	}
	if exists > 0 {
		return &ledger.AccountError{Code: a.Code, Err: ledger.ErrDuplicateAccountCode}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts
		(code, name, account_type, charity_id, parent_code, description, is_system, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.Code), a.Name, string(a.Type), string(a.CharityID), string(a.ParentCode),
		a.Description, a.System, a.Active, formatTime(a.CreatedAt),
	)
	if err != nil {
		return storageErr("create account", err)
	}
	return nil
}

func (s *Store) SetAccountActive(ctx context.Context, code ledger.AccountCode, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = ? WHERE code = ?`, active, string(code))
	if err != nil {
		return storageErr("set account active", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("set account active", err)
	}
	if n == 0 {
		return &ledger.AccountError{Code: code, Err: ledger.ErrUnknownAccount}
	}
	return nil
}

const accountColumns = `code, name, account_type, charity_id, parent_code, description, is_system, is_active, created_at`

func scanAccount(row interface{ Scan(...any) error }) (ledger.Account, error) {
	var a ledger.Account
	var code, typ, charity, parent, createdAt string
	if err := row.Scan(&code, &a.Name, &typ, &charity, &parent, &a.Description, &a.System, &a.Active, &createdAt); err != nil {
		return ledger.Account{}, err
	}
	a.Code = ledger.AccountCode(code)
	a.Type = ledger.AccountType(typ)
	a.CharityID = ledger.CharityID(charity)
	a.ParentCode = ledger.AccountCode(parent)
	t, err := parseTime(createdAt)
	if err != nil {
		return ledger.Account{}, err
	}
	a.CreatedAt = t
	return a, nil
}

func (s *Store) AccountByCode(ctx context.Context, code ledger.AccountCode) (ledger.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE code = ?`, string(code))
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, &ledger.AccountError{Code: code, Err: ledger.ErrUnknownAccount}
	}
	if err != nil {
		return ledger.Account{}, storageErr("account by code", err)
	}
	return a, nil
}

func (s *Store) Accounts(ctx context.Context, f ledger.AccountFilter) ([]ledger.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	var args []any
	if f.CharityID != nil {
		query += ` AND charity_id = ?`
		args = append(args, string(*f.CharityID))
	}
	if f.Type != "" {
		query += ` AND account_type = ?`
		args = append(args, string(f.Type))
	}
	if f.ActiveOnly {
		query += ` AND is_active`
	}
	if f.SystemOnly {
		query += ` AND is_system`
	}
	if f.CodePrefix != "" {
		query += ` AND code LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(f.CodePrefix)+"%")
	}
	query += ` ORDER BY code ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	defer rows.Close()

	var result []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, storageErr("list accounts", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list accounts", err)
	}
	return result, nil
}

// =============================================================================
// TRANSACTION STORE
// =============================================================================

// AppendTransaction writes the header and every entry inside one
// database transaction. All-or-nothing: a failure on any statement
// rolls back the whole commit.
func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("append transaction", err)
	}
	defer dbtx.Rollback()

	if err := insertTransaction(ctx, dbtx, tx); err != nil {
		return err
	}

	if err := dbtx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// AppendReversal commits a reversal and flips the original's
// is_reversed flag inside the same database transaction. If the
// original is missing or already reversed, nothing is written.
func (s *Store) AppendReversal(ctx context.Context, tx ledger.Transaction, original ledger.TransactionCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("append reversal", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx, `
		UPDATE transactions SET is_reversed = TRUE, reversed_by = ?
		WHERE code = ? AND NOT is_reversed`,
		string(tx.Code), string(original))
	if err != nil {
		return storageErr("append reversal", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("append reversal", err)
	}
	if n == 0 {
		var reversed bool
		err = dbtx.QueryRowContext(ctx,
			`SELECT is_reversed FROM transactions WHERE code = ?`, string(original)).Scan(&reversed)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %s: %w", original, ledger.ErrTransactionNotFound)
		}
		if err != nil {
			return storageErr("append reversal", err)
		}
		return fmt.Errorf("transaction %s: %w", original, ledger.ErrAlreadyReversed)
	}

	if err := insertTransaction(ctx, dbtx, tx); err != nil {
		return err
	}

	if err := dbtx.Commit(); err != nil {
		return storageErr("commit reversal", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, dbtx *sql.Tx, tx ledger.Transaction) error {
	var refType, refID sql.NullString
	if tx.Reference != nil {
		refType = sql.NullString{String: tx.Reference.Type, Valid: true}
		refID = sql.NullString{String: tx.Reference.ID, Valid: true}
	}

	_, err := dbtx.ExecContext(ctx, `
		INSERT INTO transactions
		(id, code, tx_type, tx_date, description, reference_type, reference_id,
		 charity_id, created_by, total_amount, notes, is_reversed, reversed_by, reversal_of, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Code), string(tx.Type), formatTime(tx.Date), tx.Description,
		refType, refID, string(tx.CharityID), tx.CreatedBy, tx.TotalAmount.Value.String(),
		tx.Notes, tx.IsReversed, string(tx.ReversedBy), string(tx.ReversalOf), formatTime(tx.CreatedAt),
	)
	if err != nil {
		return storageErr("append transaction header", err)
	}

	for _, e := range tx.Entries {
		_, err = dbtx.ExecContext(ctx, `
			INSERT INTO entries
			(id, transaction_id, transaction_code, account_code, entry_type, amount, memo, tx_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.TransactionID, string(e.TransactionCode), string(e.Account),
			string(e.Type), e.Amount.Value.String(), e.Memo, formatTime(e.Date), formatTime(e.CreatedAt),
		)
		if err != nil {
			return storageErr("append entry", err)
		}
	}
	return nil
}

// MarkReversed flips is_reversed one way. The WHERE clause guards
// against double reversal at the storage level too.
func (s *Store) MarkReversed(ctx context.Context, code, reversedBy ledger.TransactionCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET is_reversed = TRUE, reversed_by = ?
		WHERE code = ? AND NOT is_reversed`,
		string(reversedBy), string(code))
	if err != nil {
		return storageErr("mark reversed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("mark reversed", err)
	}
	if n == 1 {
		return nil
	}

	var reversed bool
	err = s.db.QueryRowContext(ctx,
		`SELECT is_reversed FROM transactions WHERE code = ?`, string(code)).Scan(&reversed)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction %s: %w", code, ledger.ErrTransactionNotFound)
	}
	if err != nil {
		return storageErr("mark reversed", err)
	}
	return fmt.Errorf("transaction %s: %w", code, ledger.ErrAlreadyReversed)
}

const transactionColumns = `id, code, tx_type, tx_date, description, reference_type, reference_id,
	charity_id, created_by, total_amount, notes, is_reversed, reversed_by, reversal_of, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var code, typ, txDate, charity, total, reversedBy, reversalOf, createdAt string
	var refType, refID sql.NullString
	err := row.Scan(&tx.ID, &code, &typ, &txDate, &tx.Description, &refType, &refID,
		&charity, &tx.CreatedBy, &total, &tx.Notes, &tx.IsReversed, &reversedBy, &reversalOf, &createdAt)
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx.Code = ledger.TransactionCode(code)
	tx.Type = ledger.TransactionType(typ)
	tx.CharityID = ledger.CharityID(charity)
	tx.ReversedBy = ledger.TransactionCode(reversedBy)
	tx.ReversalOf = ledger.TransactionCode(reversalOf)
	if refType.Valid {
		tx.Reference = &ledger.Reference{Type: refType.String, ID: refID.String}
	}
	if tx.Date, err = parseTime(txDate); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.CreatedAt, err = parseTime(createdAt); err != nil {
		return ledger.Transaction{}, err
	}
	if tx.TotalAmount, err = ledger.MoneyFromString(total); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) TransactionByCode(ctx context.Context, code ledger.TransactionCode) (ledger.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE code = ?`, string(code))
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, fmt.Errorf("transaction %s: %w", code, ledger.ErrTransactionNotFound)
	}
	if err != nil {
		return ledger.Transaction{}, storageErr("transaction by code", err)
	}
	if tx.Entries, err = s.entriesForTransaction(ctx, tx.ID); err != nil {
		return ledger.Transaction{}, err
	}
	return tx, nil
}

func (s *Store) TransactionsByReference(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE reference_type = ? AND reference_id = ? ORDER BY created_at ASC, rowid ASC`,
		ref.Type, ref.ID)
	if err != nil {
		return nil, storageErr("transactions by reference", err)
	}
	return s.collectTransactions(ctx, rows)
}

func (s *Store) TransactionsInRange(ctx context.Context, charity *ledger.CharityID, from, to time.Time) ([]ledger.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tx_date >= ? AND tx_date <= ?`
	args := []any{formatTime(from), formatTime(to)}
	if charity != nil {
		query += ` AND charity_id = ?`
		args = append(args, string(*charity))
	}
	query += ` ORDER BY tx_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("transactions in range", err)
	}
	return s.collectTransactions(ctx, rows)
}

func (s *Store) collectTransactions(ctx context.Context, rows *sql.Rows) ([]ledger.Transaction, error) {
	defer rows.Close()

	var result []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("scan transaction", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan transaction", err)
	}
	for i := range result {
		entries, err := s.entriesForTransaction(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Entries = entries
	}
	return result, nil
}

func (s *Store) MaxTransactionCodeByPrefix(ctx context.Context, prefix string) (ledger.TransactionCode, error) {
	var max sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(code) FROM transactions WHERE code LIKE ? ESCAPE '\'`,
		escapeLike(prefix)+"%").Scan(&max)
	if err != nil {
		return "", storageErr("max transaction code", err)
	}
	return ledger.TransactionCode(max.String), nil
}

// =============================================================================
// ENTRY READER
// =============================================================================

const entryColumns = `id, transaction_id, transaction_code, account_code, entry_type, amount, memo, tx_date, created_at`

func scanEntry(row interface{ Scan(...any) error }) (ledger.Entry, error) {
	var e ledger.Entry
	var txCode, account, typ, amount, txDate, createdAt string
	err := row.Scan(&e.ID, &e.TransactionID, &txCode, &account, &typ, &amount, &e.Memo, &txDate, &createdAt)
	if err != nil {
		return ledger.Entry{}, err
	}
	e.TransactionCode = ledger.TransactionCode(txCode)
	e.Account = ledger.AccountCode(account)
	e.Type = ledger.EntryType(typ)
	if e.Amount, err = ledger.MoneyFromString(amount); err != nil {
		return ledger.Entry{}, err
	}
	if e.Date, err = parseTime(txDate); err != nil {
		return ledger.Entry{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return ledger.Entry{}, err
	}
	return e, nil
}

func (s *Store) entriesForTransaction(ctx context.Context, txID string) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE transaction_id = ? ORDER BY rowid ASC`, txID)
	if err != nil {
		return nil, storageErr("entries for transaction", err)
	}
	return collectEntries(rows)
}

func (s *Store) EntriesForAccount(ctx context.Context, code ledger.AccountCode, r *ledger.DateRange) ([]ledger.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE account_code = ?`
	args := []any{string(code)}
	if r != nil && !r.From.IsZero() {
		query += ` AND tx_date >= ?`
		args = append(args, formatTime(r.From))
	}
	if r != nil && !r.To.IsZero() {
		query += ` AND tx_date <= ?`
		args = append(args, formatTime(r.To))
	}
	query += ` ORDER BY rowid ASC` // creation order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("entries for account", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	defer rows.Close()

	var result []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, storageErr("scan entry", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("scan entry", err)
	}
	return result, nil
}

func (s *Store) LastEntryForAccount(ctx context.Context, code ledger.AccountCode) (*ledger.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE account_code = ? ORDER BY rowid DESC LIMIT 1`,
		string(code))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("last entry for account", err)
	}
	return &e, nil
}

// SumEntries loads the amounts and sums them in Go to keep decimal
// exactness; SQL SUM would degrade to floating point on TEXT.
func (s *Store) SumEntries(ctx context.Context, code ledger.AccountCode, t ledger.EntryType) (ledger.Money, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount FROM entries WHERE account_code = ? AND entry_type = ?`,
		string(code), string(t))
	if err != nil {
		return ledger.Money{}, storageErr("sum entries", err)
	}
	defer rows.Close()

	total := ledger.ZeroMoney()
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return ledger.Money{}, storageErr("sum entries", err)
		}
		m, err := ledger.MoneyFromString(amount)
		if err != nil {
			return ledger.Money{}, storageErr("sum entries", err)
		}
		total = total.Add(m)
	}
	if err := rows.Err(); err != nil {
		return ledger.Money{}, storageErr("sum entries", err)
	}
	return total, nil
}

func (s *Store) EntryTotals(ctx context.Context, charity *ledger.CharityID) (ledger.Money, ledger.Money, error) {
	query := `SELECT e.entry_type, e.amount FROM entries e`
	var args []any
	if charity != nil {
		query += ` JOIN transactions t ON t.id = e.transaction_id WHERE t.charity_id = ?`
		args = append(args, string(*charity))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ledger.Money{}, ledger.Money{}, storageErr("entry totals", err)
	}
	defer rows.Close()

	debits, credits := ledger.ZeroMoney(), ledger.ZeroMoney()
	for rows.Next() {
		var typ, amount string
		if err := rows.Scan(&typ, &amount); err != nil {
			return ledger.Money{}, ledger.Money{}, storageErr("entry totals", err)
		}
		m, err := ledger.MoneyFromString(amount)
		if err != nil {
			return ledger.Money{}, ledger.Money{}, storageErr("entry totals", err)
		}
		if ledger.EntryType(typ) == ledger.Debit {
			debits = debits.Add(m)
		} else {
			credits = credits.Add(m)
		}
	}
	if err := rows.Err(); err != nil {
		return ledger.Money{}, ledger.Money{}, storageErr("entry totals", err)
	}
	return debits, credits, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
