/*
chart.go - Seeded system chart of accounts

PURPOSE:
  The platform's bookkeeping runs on a fixed set of system accounts:
  cash, receivables, held and allocated charity funds, fee revenue, and
  disbursement/refund expense. Bootstrap seeds them idempotently at
  startup; they are charity-less, protected accounts.

LAYOUT:
  1000  Cash / Bank                      ASSET
  1100  Accounts Receivable              ASSET
  2000  Funds Held for Charities         LIABILITY
  2100  Funds Allocated to Situations    LIABILITY
  4000  Platform Fee Revenue             REVENUE
  4100  Facilitator Fee Revenue          REVENUE
  5000  Housing Disbursements            EXPENSE
  5100  Refunds Issued                   EXPENSE

  Per-charity fund accounts hang under 2000 as "2000-<charity id>".
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// System account codes.
const (
	CashAccount           AccountCode = "1000"
	AccountsReceivable    AccountCode = "1100"
	FundsHeldPrefix       AccountCode = "2000"
	AllocatedFunds        AccountCode = "2100"
	PlatformFeeRevenue    AccountCode = "4000"
	FacilitatorFeeRevenue AccountCode = "4100"
	HousingDisbursements  AccountCode = "5000"
	RefundsExpense        AccountCode = "5100"
)

// systemChart is the seed set, in code order.
var systemChart = []CreateAccountInput{
	{Code: CashAccount, Name: "Cash / Bank", Type: AccountAsset, System: true},
	{Code: AccountsReceivable, Name: "Accounts Receivable", Type: AccountAsset, System: true},
	{Code: FundsHeldPrefix, Name: "Funds Held for Charities", Type: AccountLiability, System: true},
	{Code: AllocatedFunds, Name: "Funds Allocated to Situations", Type: AccountLiability, System: true},
	{Code: PlatformFeeRevenue, Name: "Platform Fee Revenue (7%)", Type: AccountRevenue, System: true},
	{Code: FacilitatorFeeRevenue, Name: "Facilitator Fee Revenue (3%)", Type: AccountRevenue, System: true},
	{Code: HousingDisbursements, Name: "Housing Disbursements", Type: AccountExpense, System: true},
	{Code: RefundsExpense, Name: "Refunds Issued", Type: AccountExpense, System: true},
}

// Bootstrap seeds the system accounts that do not exist yet. Idempotent:
// safe to call on every startup.
func Bootstrap(ctx context.Context, r *Registry) error {
	for _, in := range systemChart {
		if _, err := r.CreateAccount(ctx, in); err != nil {
			if errors.Is(err, ErrDuplicateAccountCode) {
				continue
			}
			return fmt.Errorf("seed account %s: %w", in.Code, err)
		}
	}
	return nil
}

// CharityFundAccountCode derives the per-charity fund account code under
// the funds-held parent.
func CharityFundAccountCode(charity CharityID) AccountCode {
	return AccountCode(fmt.Sprintf("%s-%s", FundsHeldPrefix, charity))
}
