/*
Package donation wraps the ledger core with the charity platform's
bookkeeping rules.

PURPOSE:
  The ledger package knows nothing about donations, situations, or
  bookings - it records balanced transactions. This package knows which
  accounts each business event touches:

    donation received:  Dr Cash (gross)
                        Cr Charity Fund (net)
                        Cr Platform Fee Revenue
                        Cr Facilitator Fee Revenue
    funds allocated:    Dr Charity Fund, Cr Allocated Funds
    funds disbursed:    Dr Allocated Funds, Cr Cash
    donation refunded:  Dr Charity Fund + fee accounts, Cr Cash (gross)

FEE SPLIT:
  Platform 7% and facilitator 3% of the gross amount, each rounded
  half-up to cents; the charity's net is gross minus both fees, so the
  three parts always sum back to gross exactly.

SEE ALSO:
  - books.go: the posting helpers
  - ledger/chart.go: the system accounts these postings touch
*/
package donation

import (
	"github.com/shopspring/decimal"

	"github.com/warp/charity-ledger/ledger"
)

// Reference types tagged on transactions for audit traceability.
const (
	ReferenceDonation         = "DONATION"
	ReferenceSituationFunding = "SITUATION_FUNDING"
	ReferenceBooking          = "BOOKING"
)

// Charity identifies a tenant whose funds the platform holds.
type Charity struct {
	ID   ledger.CharityID
	Name string
}

// =============================================================================
// FEE POLICY
// =============================================================================

// FeePolicy holds the percentage taken from each donation.
type FeePolicy struct {
	PlatformRate    decimal.Decimal
	FacilitatorRate decimal.Decimal
}

// DefaultFeePolicy is the platform's standard 7% + 3% split.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		PlatformRate:    decimal.RequireFromString("0.07"),
		FacilitatorRate: decimal.RequireFromString("0.03"),
	}
}

// FeeBreakdown is the decomposition of one gross donation.
type FeeBreakdown struct {
	Gross          ledger.Money
	PlatformFee    ledger.Money
	FacilitatorFee ledger.Money
	Net            ledger.Money
}

// Split decomposes a gross amount. Each fee is rounded half-up to
// cents; Net absorbs the rounding so the parts sum to Gross exactly.
func (p FeePolicy) Split(gross ledger.Money) FeeBreakdown {
	platform := gross.Mul(p.PlatformRate).Round(2)
	facilitator := gross.Mul(p.FacilitatorRate).Round(2)
	return FeeBreakdown{
		Gross:          gross,
		PlatformFee:    platform,
		FacilitatorFee: facilitator,
		Net:            gross.Sub(platform).Sub(facilitator),
	}
}
