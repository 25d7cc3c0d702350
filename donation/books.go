/*
books.go - Posting helpers for the charity platform's business events

PURPOSE:
  Books is the one object business workflows talk to. It owns the
  registry, journal, balance calculator, and reporter over a shared
  store, seeds the system chart on open, and turns each business event
  into one balanced transaction.

EVERY METHOD IS A THIN WRAPPER:
  Validation, code generation, and atomic commit all live in the
  Journal. Books only chooses accounts, amounts, and memos.
*/
package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/charity-ledger/ledger"
)

// Books bundles the ledger engine for the donation domain.
type Books struct {
	Registry *ledger.Registry
	Journal  *ledger.Journal
	Balances *ledger.Calculator
	Reporter *ledger.Reporter
	Reverser *ledger.Reverser

	fees FeePolicy
}

// BooksOption configures Books.
type BooksOption func(*Books)

// WithFeePolicy overrides the default 7%/3% split.
func WithFeePolicy(p FeePolicy) BooksOption {
	return func(b *Books) { b.fees = p }
}

// Open wires the engine over the store and seeds the system chart of
// accounts. Idempotent across restarts.
func Open(ctx context.Context, store ledger.Store, opts ...BooksOption) (*Books, error) {
	registry := ledger.NewRegistry(store)
	journal := ledger.NewJournal(store)
	b := &Books{
		Registry: registry,
		Journal:  journal,
		Balances: ledger.NewCalculator(store),
		Reporter: ledger.NewReporter(store),
		Reverser: ledger.NewReverser(store, journal),
		fees:     DefaultFeePolicy(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := ledger.Bootstrap(ctx, registry); err != nil {
		return nil, err
	}
	return b, nil
}

// EnsureCharityFundAccount returns the charity's fund account, creating
// it under the funds-held parent on first use.
func (b *Books) EnsureCharityFundAccount(ctx context.Context, charity Charity) (ledger.Account, error) {
	code := ledger.CharityFundAccountCode(charity.ID)
	a, err := b.Registry.FindByCode(ctx, code)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ledger.ErrUnknownAccount) {
		return ledger.Account{}, err
	}
	return b.Registry.CreateAccount(ctx, ledger.CreateAccountInput{
		Code:       code,
		Name:       "Charity Fund: " + charity.Name,
		Type:       ledger.AccountLiability,
		CharityID:  charity.ID,
		ParentCode: ledger.FundsHeldPrefix,
	})
}

// =============================================================================
// RECORDING
// =============================================================================

// DonationInput describes one received donation.
type DonationInput struct {
	Charity    Charity
	DonationID string
	DonorName  string
	Gross      ledger.Money
	DonatedAt  time.Time // zero means "now"
	RecordedBy string
}

// RecordDonation posts the donation: cash in for the gross, the net
// held for the charity, and the fee split as revenue.
func (b *Books) RecordDonation(ctx context.Context, in DonationInput) (ledger.Transaction, error) {
	fund, err := b.EnsureCharityFundAccount(ctx, in.Charity)
	if err != nil {
		return ledger.Transaction{}, err
	}
	split := b.fees.Split(in.Gross)

	legs := []ledger.Leg{
		ledger.DebitLeg(ledger.CashAccount, split.Gross).
			WithMemo("Donation #" + in.DonationID),
		ledger.CreditLeg(fund.Code, split.Net).
			WithMemo("Net donation for housing"),
	}
	if split.PlatformFee.IsPositive() {
		legs = append(legs, ledger.CreditLeg(ledger.PlatformFeeRevenue, split.PlatformFee).
			WithMemo("Platform fee (7%)"))
	}
	if split.FacilitatorFee.IsPositive() {
		legs = append(legs, ledger.CreditLeg(ledger.FacilitatorFeeRevenue, split.FacilitatorFee).
			WithMemo("Facilitator fee (3%)"))
	}

	return b.Journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationReceived,
		Date:        in.DonatedAt,
		Description: "Donation received from " + in.DonorName,
		Legs:        legs,
		Reference:   &ledger.Reference{Type: ReferenceDonation, ID: in.DonationID},
		CharityID:   in.Charity.ID,
		CreatedBy:   in.RecordedBy,
	})
}

// RefundInput describes a donation refund.
type RefundInput struct {
	Charity    Charity
	DonationID string
	Gross      ledger.Money
	Reason     string
	RefundedBy string
}

// RecordRefund posts the mirror image of the original donation: the
// held net and the fee revenue come back out, cash leaves for the full
// gross.
func (b *Books) RecordRefund(ctx context.Context, in RefundInput) (ledger.Transaction, error) {
	fund, err := b.EnsureCharityFundAccount(ctx, in.Charity)
	if err != nil {
		return ledger.Transaction{}, err
	}
	split := b.fees.Split(in.Gross)

	legs := []ledger.Leg{
		ledger.DebitLeg(fund.Code, split.Net).
			WithMemo("Refund - net amount"),
	}
	if split.PlatformFee.IsPositive() {
		legs = append(legs, ledger.DebitLeg(ledger.PlatformFeeRevenue, split.PlatformFee).
			WithMemo("Refund - platform fee"))
	}
	if split.FacilitatorFee.IsPositive() {
		legs = append(legs, ledger.DebitLeg(ledger.FacilitatorFeeRevenue, split.FacilitatorFee).
			WithMemo("Refund - facilitator fee"))
	}
	legs = append(legs, ledger.CreditLeg(ledger.CashAccount, split.Gross).
		WithMemo("Refund payment"))

	return b.Journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxDonationRefund,
		Description: fmt.Sprintf("Refund for donation #%s: %s", in.DonationID, in.Reason),
		Legs:        legs,
		Reference:   &ledger.Reference{Type: ReferenceDonation, ID: in.DonationID},
		CharityID:   in.Charity.ID,
		CreatedBy:   in.RefundedBy,
		Notes:       in.Reason,
	})
}

// AllocationInput describes funds committed to a situation.
type AllocationInput struct {
	Charity     Charity
	FundingID   string
	SituationID string
	Description string
	Amount      ledger.Money
	AllocatedBy string
}

// RecordAllocation moves held charity funds into the allocated bucket.
func (b *Books) RecordAllocation(ctx context.Context, in AllocationInput) (ledger.Transaction, error) {
	fund, err := b.EnsureCharityFundAccount(ctx, in.Charity)
	if err != nil {
		return ledger.Transaction{}, err
	}

	return b.Journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxFundAllocated,
		Description: "Funds allocated to situation: " + in.Description,
		Legs: []ledger.Leg{
			ledger.DebitLeg(fund.Code, in.Amount).
				WithMemo("Allocated to situation #" + in.SituationID),
			ledger.CreditLeg(ledger.AllocatedFunds, in.Amount).
				WithMemo("Committed for housing"),
		},
		Reference: &ledger.Reference{Type: ReferenceSituationFunding, ID: in.FundingID},
		CharityID: in.Charity.ID,
		CreatedBy: in.AllocatedBy,
	})
}

// DisbursementInput describes a payment out for a booking.
type DisbursementInput struct {
	BookingID        string
	ConfirmationCode string
	Payee            string
	Amount           ledger.Money
	DisbursedBy      string
}

// RecordDisbursement releases allocated funds and pays them out.
func (b *Books) RecordDisbursement(ctx context.Context, in DisbursementInput) (ledger.Transaction, error) {
	return b.Journal.Post(ctx, ledger.PostInput{
		Type:        ledger.TxFundDisbursed,
		Description: "Disbursement for booking: " + in.ConfirmationCode,
		Legs: []ledger.Leg{
			ledger.DebitLeg(ledger.AllocatedFunds, in.Amount).
				WithMemo("Released for booking #" + in.BookingID),
			ledger.CreditLeg(ledger.CashAccount, in.Amount).
				WithMemo("Payment to " + in.Payee),
		},
		Reference: &ledger.Reference{Type: ReferenceBooking, ID: in.BookingID},
		CreatedBy: in.DisbursedBy,
	})
}

// =============================================================================
// QUERIES
// =============================================================================

// AvailableFunds returns the charity fund account's balance: what the
// platform still holds for the charity, unallocated.
func (b *Books) AvailableFunds(ctx context.Context, charity Charity) (ledger.Money, error) {
	fund, err := b.EnsureCharityFundAccount(ctx, charity)
	if err != nil {
		return ledger.Money{}, err
	}
	return b.Balances.Balance(ctx, fund.Code)
}

// DonationTransactions returns every transaction recorded against one
// donation, in recording order.
func (b *Books) DonationTransactions(ctx context.Context, donationID string) ([]ledger.Transaction, error) {
	return b.Journal.FindByReference(ctx, ledger.Reference{Type: ReferenceDonation, ID: donationID})
}
