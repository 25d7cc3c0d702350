package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/charity-ledger/ledger"
	"github.com/warp/charity-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestBooks seeds a minimal chart and returns the engine pieces used
// by most tests.
func newTestBooks(t *testing.T) (*sqlite.Store, *ledger.Journal) {
	t.Helper()
	s := newTestStore(t)
	ctx := context.Background()

	seed := []ledger.Account{
		{Code: "1000", Name: "Cash", Type: ledger.AccountAsset, Active: true, CreatedAt: time.Now()},
		{Code: "2000", Name: "Funds Held", Type: ledger.AccountLiability, Active: true, CreatedAt: time.Now()},
		{Code: "4000", Name: "Fee Revenue", Type: ledger.AccountRevenue, Active: true, CreatedAt: time.Now()},
	}
	for _, a := range seed {
		require.NoError(t, s.CreateAccount(ctx, a))
	}
	return s, ledger.NewJournal(s)
}

func mustMoney(t *testing.T, s string) ledger.Money {
	t.Helper()
	m, err := ledger.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestSQLite_Accounts_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 6, 5, 10, 30, 0, 123456789, time.UTC)
	account := ledger.Account{
		Code:        "2000-charity-a",
		Name:        "Charity Fund: Shelter A",
		Type:        ledger.AccountLiability,
		CharityID:   "charity-a",
		ParentCode:  "2000",
		Description: "Donated funds held for Shelter A",
		Active:      true,
		CreatedAt:   created,
	}
	require.NoError(t, s.CreateAccount(ctx, account))

	got, err := s.AccountByCode(ctx, "2000-charity-a")
	require.NoError(t, err)
	assert.Equal(t, account.Name, got.Name)
	assert.Equal(t, ledger.AccountLiability, got.Type)
	assert.Equal(t, ledger.CharityID("charity-a"), got.CharityID)
	assert.Equal(t, ledger.AccountCode("2000"), got.ParentCode)
	assert.True(t, got.Active)
	assert.True(t, got.CreatedAt.Equal(created), "timestamps survive with full precision")
}

func TestSQLite_Accounts_DuplicateCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := ledger.Account{Code: "1000", Name: "Cash", Type: ledger.AccountAsset, Active: true, CreatedAt: time.Now()}
	require.NoError(t, s.CreateAccount(ctx, a))

	err := s.CreateAccount(ctx, a)
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccountCode)
}

func TestSQLite_Accounts_UnknownCode(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AccountByCode(context.Background(), "9999")
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestSQLite_Accounts_Filtering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	charity := ledger.CharityID("charity-a")
	seed := []ledger.Account{
		{Code: "1000", Name: "Cash", Type: ledger.AccountAsset, System: true, Active: true, CreatedAt: time.Now()},
		{Code: "2000", Name: "Funds Held", Type: ledger.AccountLiability, System: true, Active: true, CreatedAt: time.Now()},
		{Code: "2000-charity-a", Name: "Fund A", Type: ledger.AccountLiability, CharityID: charity, Active: true, CreatedAt: time.Now()},
		{Code: "3000", Name: "Retired", Type: ledger.AccountEquity, Active: false, CreatedAt: time.Now()},
	}
	for _, a := range seed {
		require.NoError(t, s.CreateAccount(ctx, a))
	}

	active, err := s.Accounts(ctx, ledger.AccountFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, ledger.AccountCode("1000"), active[0].Code, "sorted by code")

	system, err := s.Accounts(ctx, ledger.AccountFilter{SystemOnly: true})
	require.NoError(t, err)
	assert.Len(t, system, 2)

	scoped, err := s.Accounts(ctx, ledger.AccountFilter{CharityID: &charity})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, ledger.AccountCode("2000-charity-a"), scoped[0].Code)

	funds, err := s.Accounts(ctx, ledger.AccountFilter{CodePrefix: "2000"})
	require.NoError(t, err)
	assert.Len(t, funds, 2)
}

func TestSQLite_Accounts_SetActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := ledger.Account{Code: "1000", Name: "Cash", Type: ledger.AccountAsset, Active: true, CreatedAt: time.Now()}
	require.NoError(t, s.CreateAccount(ctx, a))

	require.NoError(t, s.SetAccountActive(ctx, "1000", false))
	got, err := s.AccountByCode(ctx, "1000")
	require.NoError(t, err)
	assert.False(t, got.Active)

	err = s.SetAccountActive(ctx, "9999", false)
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

// =============================================================================
// TRANSACTIONS AND ENTRIES
// =============================================================================

func TestSQLite_PostAndReadBack(t *testing.T) {
	// GIVEN: a journal over the SQLite store
	// WHEN: posting a balanced transaction
	// THEN: the header and all entries read back exactly, in leg order
	s, journal := newTestBooks(t)
	ctx := context.Background()

	posted, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Donation received",
		Reference:   &ledger.Reference{Type: "DONATION", ID: "don-7"},
		CharityID:   "charity-a",
		CreatedBy:   "importer",
		Notes:       "batch 12",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "100.00")),
			ledger.CreditLeg("2000", mustMoney(t, "93.00")).WithMemo("Net donation"),
			ledger.CreditLeg("4000", mustMoney(t, "7.00")),
		},
	})
	require.NoError(t, err)

	got, err := s.TransactionByCode(ctx, posted.Code)
	require.NoError(t, err)
	assert.Equal(t, posted.ID, got.ID)
	assert.Equal(t, ledger.TxDonationReceived, got.Type)
	assert.Equal(t, "Donation received", got.Description)
	require.NotNil(t, got.Reference)
	assert.Equal(t, "don-7", got.Reference.ID)
	assert.Equal(t, ledger.CharityID("charity-a"), got.CharityID)
	assert.Equal(t, "importer", got.CreatedBy)
	assert.Equal(t, "batch 12", got.Notes)
	assert.Equal(t, "100.00", got.TotalAmount.String())
	assert.False(t, got.IsReversed)

	require.Len(t, got.Entries, 3)
	assert.Equal(t, ledger.AccountCode("1000"), got.Entries[0].Account)
	assert.Equal(t, ledger.Debit, got.Entries[0].Type)
	assert.Equal(t, ledger.AccountCode("2000"), got.Entries[1].Account)
	assert.Equal(t, "Net donation", got.Entries[1].Memo)
	assert.Equal(t, "93.00", got.Entries[1].Amount.String())
	assert.True(t, got.Balanced())
}

func TestSQLite_AppendTransaction_AtomicRollback(t *testing.T) {
	// An entry against a nonexistent account violates the foreign key on
	// the third insert. Nothing from the attempt may persist, header
	// included.
	s, _ := newTestBooks(t)
	ctx := context.Background()

	now := time.Now()
	txID := uuid.NewString()
	bad := ledger.Transaction{
		ID:          txID,
		Code:        "TXN-20250605-00001",
		Type:        ledger.TxAdjustment,
		Date:        now,
		Description: "Partially invalid",
		TotalAmount: mustMoney(t, "10.00"),
		CreatedAt:   now,
		Entries: []ledger.Entry{
			{ID: uuid.NewString(), TransactionID: txID, TransactionCode: "TXN-20250605-00001",
				Account: "1000", Type: ledger.Debit, Amount: mustMoney(t, "10.00"), Date: now, CreatedAt: now},
			{ID: uuid.NewString(), TransactionID: txID, TransactionCode: "TXN-20250605-00001",
				Account: "no-such-account", Type: ledger.Credit, Amount: mustMoney(t, "10.00"), Date: now, CreatedAt: now},
		},
	}

	err := s.AppendTransaction(ctx, bad)
	require.ErrorIs(t, err, ledger.ErrStorageFailure)

	_, err = s.TransactionByCode(ctx, "TXN-20250605-00001")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound, "header must not survive the rollback")

	entries, err := s.EntriesForAccount(ctx, "1000", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLite_DateBounds_SubSecondPrecision(t *testing.T) {
	// Date comparisons run on the stored strings, so an entry at a whole
	// second must count toward a bound a fraction of a second later.
	s, journal := newTestBooks(t)
	ctx := context.Background()

	posted := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	_, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Date:        posted,
		Description: "Donation",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "10.00")),
			ledger.CreditLeg("2000", mustMoney(t, "10.00")),
		},
	})
	require.NoError(t, err)

	calc := ledger.NewCalculator(s)

	asOf, err := calc.BalanceAsOf(ctx, "1000", posted.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "10.00", asOf.String())

	atPosting, err := calc.BalanceAsOf(ctx, "1000", posted)
	require.NoError(t, err)
	assert.Equal(t, "10.00", atPosting.String(), "bound is inclusive")

	before, err := calc.BalanceAsOf(ctx, "1000", posted.Add(-time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, "0.00", before.String())
}

func TestSQLite_AppendReversal_AtomicFlagFlip(t *testing.T) {
	// The reversal insert and the original's flag flip are one database
	// transaction: a late second reversal is refused and leaves nothing
	// behind.
	s, journal := newTestBooks(t)
	ctx := context.Background()

	orig, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Donation",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "100.00")),
			ledger.CreditLeg("2000", mustMoney(t, "100.00")),
		},
	})
	require.NoError(t, err)

	reversal, err := ledger.NewReverser(s, journal).Reverse(ctx, orig.Code)
	require.NoError(t, err)

	got, err := s.TransactionByCode(ctx, orig.Code)
	require.NoError(t, err)
	assert.True(t, got.IsReversed)
	assert.Equal(t, reversal.Code, got.ReversedBy)

	// A second reversal that already passed the flag read: refused
	// wholesale, its transaction never stored.
	now := time.Now()
	lateID := uuid.NewString()
	late := ledger.Transaction{
		ID:          lateID,
		Code:        "TXN-20250605-00077",
		Type:        ledger.TxReversal,
		Date:        now,
		Description: "Reversal of " + string(orig.Code),
		ReversalOf:  orig.Code,
		TotalAmount: mustMoney(t, "100.00"),
		CreatedAt:   now,
		Entries: []ledger.Entry{
			{ID: uuid.NewString(), TransactionID: lateID, TransactionCode: "TXN-20250605-00077",
				Account: "1000", Type: ledger.Credit, Amount: mustMoney(t, "100.00"), Date: now, CreatedAt: now},
			{ID: uuid.NewString(), TransactionID: lateID, TransactionCode: "TXN-20250605-00077",
				Account: "2000", Type: ledger.Debit, Amount: mustMoney(t, "100.00"), Date: now, CreatedAt: now},
		},
	}
	err = s.AppendReversal(ctx, late, orig.Code)
	require.ErrorIs(t, err, ledger.ErrAlreadyReversed)

	_, err = s.TransactionByCode(ctx, "TXN-20250605-00077")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	entries, err := s.EntriesForAccount(ctx, "1000", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "original plus one reversal only")

	err = s.AppendReversal(ctx, late, "TXN-19990101-00001")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestSQLite_MarkReversed_OneWay(t *testing.T) {
	s, journal := newTestBooks(t)
	ctx := context.Background()

	posted, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Donation",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "50.00")),
			ledger.CreditLeg("2000", mustMoney(t, "50.00")),
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkReversed(ctx, posted.Code, "TXN-20250605-00099"))

	got, err := s.TransactionByCode(ctx, posted.Code)
	require.NoError(t, err)
	assert.True(t, got.IsReversed)
	assert.Equal(t, ledger.TransactionCode("TXN-20250605-00099"), got.ReversedBy)

	err = s.MarkReversed(ctx, posted.Code, "TXN-20250605-00100")
	assert.ErrorIs(t, err, ledger.ErrAlreadyReversed)

	err = s.MarkReversed(ctx, "TXN-19990101-00001", "TXN-20250605-00100")
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestSQLite_TransactionsByReference(t *testing.T) {
	s, journal := newTestBooks(t)
	ctx := context.Background()
	ref := ledger.Reference{Type: "DONATION", ID: "don-3"}

	for _, amount := range []string{"10.00", "20.00"} {
		_, err := journal.Post(ctx, ledger.PostInput{
			Type:        ledger.TxDonationReceived,
			Description: "Donation",
			Reference:   &ref,
			Legs: []ledger.Leg{
				ledger.DebitLeg("1000", mustMoney(t, amount)),
				ledger.CreditLeg("2000", mustMoney(t, amount)),
			},
		})
		require.NoError(t, err)
	}
	_, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Unrelated",
		Reference:   &ledger.Reference{Type: "DONATION", ID: "don-4"},
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "5.00")),
			ledger.CreditLeg("2000", mustMoney(t, "5.00")),
		},
	})
	require.NoError(t, err)

	linked, err := s.TransactionsByReference(ctx, ref)
	require.NoError(t, err)
	require.Len(t, linked, 2)
	assert.Equal(t, "10.00", linked[0].TotalAmount.String())
	assert.Equal(t, "20.00", linked[1].TotalAmount.String())
	require.Len(t, linked[0].Entries, 2, "entries are loaded alongside the headers")
}

func TestSQLite_TransactionsInRange(t *testing.T) {
	s, journal := newTestBooks(t)
	ctx := context.Background()

	post := func(date time.Time, charity ledger.CharityID) {
		t.Helper()
		_, err := journal.Post(ctx, ledger.PostInput{
			Type:        ledger.TxDonationReceived,
			Date:        date,
			Description: "Donation",
			CharityID:   charity,
			Legs: []ledger.Leg{
				ledger.DebitLeg("1000", mustMoney(t, "10.00")),
				ledger.CreditLeg("2000", mustMoney(t, "10.00")),
			},
		})
		require.NoError(t, err)
	}
	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	post(jan, "charity-a")
	post(mar, "charity-a")
	post(may, "charity-b")

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	all, err := s.TransactionsInRange(ctx, nil, from, to)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Date.After(all[1].Date), "newest first")

	a := ledger.CharityID("charity-a")
	scoped, err := s.TransactionsInRange(ctx, &a, from, to)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.True(t, scoped[0].Date.Equal(mar))
}

func TestSQLite_MaxTransactionCodeByPrefix(t *testing.T) {
	s, journal := newTestBooks(t)
	ctx := context.Background()

	max, err := s.MaxTransactionCodeByPrefix(ctx, "TXN-20250605-")
	require.NoError(t, err)
	assert.Empty(t, max, "no transactions yet")

	var last ledger.Transaction
	for i := 0; i < 3; i++ {
		var err error
		last, err = journal.Post(ctx, ledger.PostInput{
			Type:        ledger.TxDonationReceived,
			Description: "Donation",
			Legs: []ledger.Leg{
				ledger.DebitLeg("1000", mustMoney(t, "10.00")),
				ledger.CreditLeg("2000", mustMoney(t, "10.00")),
			},
		})
		require.NoError(t, err)
	}

	prefix := string(last.Code[:len(last.Code)-5])
	max, err = s.MaxTransactionCodeByPrefix(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, last.Code, max)
}

func TestSQLite_JournalReseedsFromStore(t *testing.T) {
	// A fresh journal over the same database continues the sequence
	// instead of reissuing committed codes.
	s, journal := newTestBooks(t)
	ctx := context.Background()

	first, err := journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Donation",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "10.00")),
			ledger.CreditLeg("2000", mustMoney(t, "10.00")),
		},
	})
	require.NoError(t, err)

	second, err := ledger.NewJournal(s).Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Description: "Donation",
		Legs: []ledger.Leg{
			ledger.DebitLeg("1000", mustMoney(t, "10.00")),
			ledger.CreditLeg("2000", mustMoney(t, "10.00")),
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)
	assert.Greater(t, string(second.Code), string(first.Code))
}

// =============================================================================
// ENTRY READS AND TOTALS
// =============================================================================

func TestSQLite_EntriesForAccount_OrderAndRange(t *testing.T) {
	s, journal := newTestBooks(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, err := journal.Post(ctx, ledger.PostInput{
			Type:        ledger.TxDonationReceived,
			Date:        d,
			Description: "Donation",
			Legs: []ledger.Leg{
				ledger.DebitLeg("1000", ledger.MoneyFromInt(int64(10*(i+1)))),
				ledger.CreditLeg("2000", ledger.MoneyFromInt(int64(10*(i+1)))),
			},
		})
		require.NoError(t, err)
	}

	all, err := s.EntriesForAccount(ctx, "1000", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "10.00", all[0].Amount.String(), "creation order preserved")
	assert.Equal(t, "30.00", all[2].Amount.String())

	bounded, err := s.EntriesForAccount(ctx, "1000", &ledger.DateRange{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "20.00", bounded[0].Amount.String())

	last, err := s.LastEntryForAccount(ctx, "1000")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "30.00", last.Amount.String())

	none, err := s.LastEntryForAccount(ctx, "4000")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLite_SumsStayExact(t *testing.T) {
	// Amounts that are classic float troublemakers must sum exactly.
	s, journal := newTestBooks(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := journal.Post(ctx, ledger.PostInput{
			Type:        ledger.TxDonationReceived,
			Description: "Donation",
			CharityID:   "charity-a",
			Legs: []ledger.Leg{
				ledger.DebitLeg("1000", mustMoney(t, "0.10")),
				ledger.CreditLeg("2000", mustMoney(t, "0.10")),
			},
		})
		require.NoError(t, err)
	}

	debits, err := s.SumEntries(ctx, "1000", ledger.Debit)
	require.NoError(t, err)
	assert.Equal(t, "1.00", debits.String())

	totalDr, totalCr, err := s.EntryTotals(ctx, nil)
	require.NoError(t, err)
	assert.True(t, totalDr.Equal(totalCr))
	assert.Equal(t, "1.00", totalDr.String())

	a := ledger.CharityID("charity-a")
	scopedDr, _, err := s.EntryTotals(ctx, &a)
	require.NoError(t, err)
	assert.Equal(t, "1.00", scopedDr.String())

	b := ledger.CharityID("charity-b")
	noneDr, noneCr, err := s.EntryTotals(ctx, &b)
	require.NoError(t, err)
	assert.True(t, noneDr.IsZero())
	assert.True(t, noneCr.IsZero())
}
