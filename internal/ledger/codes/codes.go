// Package codes is the shared symbolic account-code table. Business features
// (invoicing, purchasing, payments, POS) never store raw account ids; they
// reference accounts through these keys and the posting engine resolves them,
// keeping callers decoupled from account-id churn.
package codes

// Symbolic keys used by calling features.
const (
	Cash               = "cash"
	Bank               = "bank"
	AccountsReceivable = "accounts-receivable"
	Inventory          = "inventory"
	AccountsPayable    = "accounts-payable"
	SalesTaxPayable    = "sales-tax-payable"
	OwnersEquity       = "owners-equity"
	RetainedEarnings   = "retained-earnings"
	SalesRevenue       = "sales-revenue"
	OtherIncome        = "other-income"
	CostOfGoodsSold    = "cost-of-goods-sold"
	OperatingExpenses  = "operating-expenses"
)

// Definition describes one default chart-of-accounts entry.
type Definition struct {
	Key     string
	Code    string
	Name    string
	Type    string
	SubType string
	System  bool
}

// defaults is the fixed seed set. System accounts are the ones automation
// depends on; they can never be deleted and their code/type are frozen.
var defaults = []Definition{
	{Key: Cash, Code: "1000", Name: "Cash", Type: "asset", SubType: "cash", System: true},
	{Key: Bank, Code: "1100", Name: "Bank", Type: "asset", SubType: "bank", System: false},
	{Key: AccountsReceivable, Code: "1200", Name: "Accounts Receivable", Type: "asset", SubType: "receivable", System: true},
	{Key: Inventory, Code: "1300", Name: "Inventory", Type: "asset", SubType: "inventory", System: true},
	{Key: AccountsPayable, Code: "2000", Name: "Accounts Payable", Type: "liability", SubType: "payable", System: true},
	{Key: SalesTaxPayable, Code: "2100", Name: "Sales Tax Payable", Type: "liability", SubType: "tax", System: true},
	{Key: OwnersEquity, Code: "3000", Name: "Owner's Equity", Type: "equity", SubType: "capital", System: true},
	{Key: RetainedEarnings, Code: "3900", Name: "Retained Earnings", Type: "equity", SubType: "retained", System: true},
	{Key: SalesRevenue, Code: "4000", Name: "Sales Revenue", Type: "income", SubType: "operating", System: true},
	{Key: OtherIncome, Code: "4900", Name: "Other Income", Type: "income", SubType: "other", System: false},
	{Key: CostOfGoodsSold, Code: "5000", Name: "Cost of Goods Sold", Type: "expense", SubType: "cogs", System: true},
	{Key: OperatingExpenses, Code: "6000", Name: "Operating Expenses", Type: "expense", SubType: "operating", System: false},
}

// Defaults returns a copy of the seed definitions.
func Defaults() []Definition {
	out := make([]Definition, len(defaults))
	copy(out, defaults)
	return out
}

// Resolve maps a symbolic key to its ledger code; ok is false for unknown keys.
func Resolve(key string) (string, bool) {
	for _, d := range defaults {
		if d.Key == key {
			return d.Code, true
		}
	}
	return "", false
}
