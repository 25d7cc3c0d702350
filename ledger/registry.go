/*
registry.go - Chart of accounts registry

PURPOSE:
  Owns account identity: uniqueness of account codes, active/system
  flags, and type classification. The Registry knows nothing about
  transactions; deactivating an account never touches its entries.

CODE FORMAT:
  Account codes are caller-supplied strings. The core enforces only
  non-emptiness and uniqueness; an optional pattern (WithCodePattern)
  lets an installation pin a taxonomy like "4000" or "4000-DONATIONS".

SEE ALSO:
  - chart.go: seeded system accounts
  - journal.go: consults the registry before committing legs
*/
package ledger

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry manages the chart of accounts.
type Registry struct {
	store       AccountStore
	codePattern *regexp.Regexp // nil: only non-emptiness is enforced
	now         func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCodePattern restricts account codes to the given format.
func WithCodePattern(re *regexp.Regexp) RegistryOption {
	return func(r *Registry) { r.codePattern = re }
}

// WithRegistryClock overrides the clock. For tests.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a Registry over the given account store.
func NewRegistry(store AccountStore, opts ...RegistryOption) *Registry {
	r := &Registry{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateAccountInput carries the attributes of a new account.
type CreateAccountInput struct {
	Code        AccountCode
	Name        string
	Type        AccountType
	CharityID   CharityID
	ParentCode  AccountCode
	Description string
	System      bool
}

// CreateAccount adds an account to the chart.
// Fails with ErrInvalidAccountCode if the code is empty or fails the
// configured format check, and with ErrDuplicateAccountCode if taken.
func (r *Registry) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	if in.Code == "" {
		return Account{}, &AccountError{Code: in.Code, Err: ErrInvalidAccountCode}
	}
	if r.codePattern != nil && !r.codePattern.MatchString(string(in.Code)) {
		return Account{}, &AccountError{Code: in.Code, Err: ErrInvalidAccountCode}
	}
	if !in.Type.Valid() {
		return Account{}, fmt.Errorf("account %s: invalid account type %q", in.Code, in.Type)
	}

	a := Account{
		Code:        in.Code,
		Name:        in.Name,
		Type:        in.Type,
		CharityID:   in.CharityID,
		ParentCode:  in.ParentCode,
		Description: in.Description,
		System:      in.System,
		Active:      true,
		CreatedAt:   r.now(),
	}
	if err := r.store.CreateAccount(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// FindByCode resolves an account, ErrUnknownAccount if absent.
func (r *Registry) FindByCode(ctx context.Context, code AccountCode) (Account, error) {
	return r.store.AccountByCode(ctx, code)
}

// DeactivateOptions controls Deactivate.
type DeactivateOptions struct {
	// Override permits deactivating a system account.
	Override bool
}

// Deactivate marks an account inactive. Existing entries are untouched;
// accounts with history are never physically deleted.
// Fails with ErrProtectedAccount for system accounts unless overridden.
func (r *Registry) Deactivate(ctx context.Context, code AccountCode, opts DeactivateOptions) error {
	a, err := r.store.AccountByCode(ctx, code)
	if err != nil {
		return err
	}
	if a.System && !opts.Override {
		return &AccountError{Code: code, Err: ErrProtectedAccount}
	}
	return r.store.SetAccountActive(ctx, code, false)
}

// Reactivate marks an account active again.
func (r *Registry) Reactivate(ctx context.Context, code AccountCode) error {
	if _, err := r.store.AccountByCode(ctx, code); err != nil {
		return err
	}
	return r.store.SetAccountActive(ctx, code, true)
}

// ListActive returns active accounts ordered by code, optionally scoped
// to one charity.
func (r *Registry) ListActive(ctx context.Context, charity *CharityID) ([]Account, error) {
	return r.store.Accounts(ctx, AccountFilter{CharityID: charity, ActiveOnly: true})
}

// ListByType returns accounts of one type, ordered by code.
func (r *Registry) ListByType(ctx context.Context, t AccountType) ([]Account, error) {
	return r.store.Accounts(ctx, AccountFilter{Type: t})
}

// ListSystemAccounts returns the seeded, protected accounts.
func (r *Registry) ListSystemAccounts(ctx context.Context) ([]Account, error) {
	return r.store.Accounts(ctx, AccountFilter{SystemOnly: true})
}

// FindByCodePrefix returns accounts whose code starts with prefix,
// ordered by code. Used to enumerate per-charity fund accounts.
func (r *Registry) FindByCodePrefix(ctx context.Context, prefix string) ([]Account, error) {
	return r.store.Accounts(ctx, AccountFilter{CodePrefix: prefix})
}
