package query

import (
	"time"

	"github.com/ledgerline/ledgerline/internal/shared"
)

// BalanceSummary aggregates all lines of one account. Balance follows the
// debit-positive convention; presenters flip the sign for credit-normal types.
type BalanceSummary struct {
	Balance     float64 `json:"balance"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
}

// AccountActivity is one trial balance row.
type AccountActivity struct {
	AccountID   int64   `json:"account_id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	Balance     float64 `json:"balance"`
}

// TrialBalance summarises per-account activity over a window. Totals must
// balance for consistent books.
type TrialBalance struct {
	Accounts []AccountActivity `json:"accounts"`
	Totals   BalanceSummary    `json:"totals"`
}

// AccountBalance couples account metadata with its aggregate balance, for
// lookups keyed by human-readable code.
type AccountBalance struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsActive  bool   `json:"is_active"`
	BalanceSummary
}

// EntriesFilter selects and pages ledger lines.
type EntriesFilter struct {
	AccountID *int64
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// EntryRow is one GL listing row joined with account and journal metadata.
// Rows carry no per-row running total; the page-level OpeningBalance covers
// everything strictly before the window.
type EntryRow struct {
	ID            int64     `json:"id"`
	JournalID     int64     `json:"journal_id"`
	JournalNumber string    `json:"journal_number"`
	Date          time.Time `json:"transaction_date"`
	Description   string    `json:"description"`
	AccountID     int64     `json:"account_id"`
	AccountCode   string    `json:"account_code"`
	AccountName   string    `json:"account_name"`
	Debit         float64   `json:"debit"`
	Credit        float64   `json:"credit"`
	ReferenceType string    `json:"reference_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// EntriesPage is a paginated GL listing with its opening-balance aggregate.
type EntriesPage struct {
	Entries        []EntryRow        `json:"entries"`
	OpeningBalance float64           `json:"opening_balance"`
	Pagination     shared.Pagination `json:"pagination"`
}
