package nestegg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups account types for allocation and net-worth reporting.
type Category string

const (
	Cash         Category = "cash"
	Investments  Category = "investments"
	Retirement   Category = "retirement"
	RealEstate   Category = "real_estate"
	Liabilities  Category = "liabilities"
	FutureIncome Category = "future_income"
)

// AssetCategories are the categories counted as assets in allocation
// percentages. Liabilities are excluded by definition; future income is
// listed but always carries a zero share of current assets.
var AssetCategories = []Category{Cash, Investments, Retirement, RealEstate, FutureIncome}

// AccountType identifies the kind of account; every type maps to exactly one category.
type AccountType string

const (
	Checking       AccountType = "checking"
	Savings        AccountType = "savings"
	Brokerage      AccountType = "brokerage"
	Crypto         AccountType = "crypto"
	Retirement401k AccountType = "401k"
	IRA            AccountType = "ira"
	Pension        AccountType = "pension"
	Property       AccountType = "property"
	Mortgage       AccountType = "mortgage"
	Loan           AccountType = "loan"
	CreditCard     AccountType = "credit-card"
	SocialSecurity AccountType = "social-security"
)

// Category returns the category the account type belongs to.
func (t AccountType) Category() Category {
	switch t {
	case Checking, Savings:
		return Cash
	case Brokerage, Crypto:
		return Investments
	case Retirement401k, IRA, Pension:
		return Retirement
	case Property:
		return RealEstate
	case Mortgage, Loan, CreditCard:
		return Liabilities
	case SocialSecurity:
		return FutureIncome
	default:
		return Cash
	}
}

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case Checking, Savings, Brokerage, Crypto, Retirement401k, IRA, Pension,
		Property, Mortgage, Loan, CreditCard, SocialSecurity:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type: %q", s)
	}
}

// ErrAccountNotFound is returned by operations addressing an account id that
// is not in the registry. The message is user-facing.
var ErrAccountNotFound = errors.New("Account not found")

// Account is a single financial account in the registry.
//
// Liability accounts (mortgages, loans, credit cards) store the outstanding
// balance as a positive number.
type Account struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	DisplayName   string      `json:"displayName,omitempty"`
	PreviousNames []string    `json:"previousNames,omitempty"` // grows only via merge
	Type          AccountType `json:"type"`
	CurrentValue  Money       `json:"currentValue"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Label returns the display name when set and non-blank, else the base name.
func (a Account) Label() string {
	if strings.TrimSpace(a.DisplayName) != "" {
		return a.DisplayName
	}
	return a.Name
}

// IsLiability reports whether the account counts against net worth.
func (a Account) IsLiability() bool { return a.Type.Category() == Liabilities }

// Account returns a pointer into the registry for the given id, or nil.
func (st *State) Account(id string) *Account {
	for i := range st.Accounts {
		if st.Accounts[i].ID == id {
			return &st.Accounts[i]
		}
	}
	return nil
}

// UpsertAccount assigns an id and creation time when absent, always refreshes
// the update time, then replaces-or-appends by id. A brand new account also
// gets an account_created entry in the history.
func (st *State) UpsertAccount(a Account) Account {
	now := time.Now()
	a.UpdatedAt = now
	if a.ID == "" {
		a.ID = uuid.NewString()
		a.CreatedAt = now
		st.Accounts = append(st.Accounts, a)
		st.History.Append(NewAccountCreated(a.ID, a.Name, a.CurrentValue))
		return a
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	for i := range st.Accounts {
		if st.Accounts[i].ID == a.ID {
			st.Accounts[i] = a
			return a
		}
	}
	st.Accounts = append(st.Accounts, a)
	st.History.Append(NewAccountCreated(a.ID, a.Name, a.CurrentValue))
	return a
}

// DeleteAccount removes the account by id.
func (st *State) DeleteAccount(id string) error {
	for i := range st.Accounts {
		if st.Accounts[i].ID == id {
			st.Accounts = append(st.Accounts[:i], st.Accounts[i+1:]...)
			return nil
		}
	}
	return ErrAccountNotFound
}

// SetDisplayName sets the display override. A blank or whitespace-only value
// clears the override.
func (st *State) SetDisplayName(id, value string) error {
	a := st.Account(id)
	if a == nil {
		return ErrAccountNotFound
	}
	if strings.TrimSpace(value) == "" {
		value = ""
	}
	a.DisplayName = value
	a.UpdatedAt = time.Now()
	return nil
}

// UpdateBalance records a new balance for the account, appending a
// balance_update entry. The balance date is the chronological key for
// financial calculations and may differ from the entry timestamp.
func (st *State) UpdateBalance(id string, value Money, on Date) error {
	a := st.Account(id)
	if a == nil {
		return ErrAccountNotFound
	}
	st.History.Append(NewBalanceUpdate(a.ID, a.Name, a.CurrentValue, value, on))
	a.CurrentValue = value
	a.UpdatedAt = time.Now()
	return nil
}
