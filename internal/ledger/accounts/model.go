package accounts

import "time"

// AccountType enumerates chart-of-accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the known categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Account models a chart of accounts node. Code is unique per business.
// System accounts are seeded defaults required by automation: their code and
// type are frozen and they can never be deleted.
type Account struct {
	ID          int64
	BusinessID  int64
	Code        string
	Name        string
	Description string
	Type        AccountType
	SubType     string
	IsActive    bool
	IsSystem    bool
	ParentID    *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
