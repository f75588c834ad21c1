package query

import (
	"context"
	"time"

	ledgershared "github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/shared"
)

// Service answers read-only ledger questions: balances, trial balance and the
// paginated GL listing. Every call recomputes from committed lines.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AccountBalance aggregates an account's lines, optionally up to asOf
// inclusive. Lines dated after asOf are excluded.
func (s *Service) AccountBalance(ctx context.Context, businessID, accountID int64, asOf *time.Time) (BalanceSummary, error) {
	sums, err := s.repo.SumAccount(ctx, businessID, accountID, asOf)
	if err != nil {
		return BalanceSummary{}, err
	}
	return summarize(sums.TotalDebit, sums.TotalCredit), nil
}

// AccountBalanceByCode is the convenience lookup keyed by ledger code.
func (s *Service) AccountBalanceByCode(ctx context.Context, businessID int64, code string) (AccountBalance, error) {
	ab, err := s.repo.AccountWithBalanceByCode(ctx, businessID, code)
	if err != nil {
		return AccountBalance{}, err
	}
	ab.BalanceSummary = summarize(ab.TotalDebit, ab.TotalCredit)
	return ab, nil
}

// TrialBalance reports per-account activity within [start, end] for every
// active account, plus global totals that must balance.
func (s *Service) TrialBalance(ctx context.Context, businessID int64, start, end time.Time) (TrialBalance, error) {
	if end.Before(start) {
		return TrialBalance{}, ledgershared.ValidationError{Field: "end_date", Reason: "before start_date"}
	}
	rows, err := s.repo.TrialBalanceRows(ctx, businessID, start, end)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(rows), nil
}

// Entries returns one page of the GL listing together with the opening
// balance aggregate for everything before the window.
func (s *Service) Entries(ctx context.Context, businessID int64, f EntriesFilter) (EntriesPage, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	rows, total, err := s.repo.Entries(ctx, businessID, f)
	if err != nil {
		return EntriesPage{}, err
	}
	opening, err := s.repo.OpeningBalance(ctx, businessID, f)
	if err != nil {
		return EntriesPage{}, err
	}
	return EntriesPage{
		Entries:        rows,
		OpeningBalance: ledgershared.Round2(opening),
		Pagination:     shared.PaginationFromOffset(f.Limit, f.Offset, total),
	}, nil
}

func summarize(totalDebit, totalCredit float64) BalanceSummary {
	totalDebit = ledgershared.Round2(totalDebit)
	totalCredit = ledgershared.Round2(totalCredit)
	return BalanceSummary{
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Balance:     ledgershared.Difference(totalDebit, totalCredit),
	}
}

// BuildTrialBalance rounds per-account activity and accumulates the global
// totals. Kept pure so the balancing property is directly testable.
func BuildTrialBalance(rows []AccountActivity) TrialBalance {
	tb := TrialBalance{Accounts: make([]AccountActivity, 0, len(rows))}
	for _, row := range rows {
		row.TotalDebit = ledgershared.Round2(row.TotalDebit)
		row.TotalCredit = ledgershared.Round2(row.TotalCredit)
		row.Balance = ledgershared.Difference(row.TotalDebit, row.TotalCredit)
		tb.Accounts = append(tb.Accounts, row)
		tb.Totals.TotalDebit += row.TotalDebit
		tb.Totals.TotalCredit += row.TotalCredit
	}
	tb.Totals.TotalDebit = ledgershared.Round2(tb.Totals.TotalDebit)
	tb.Totals.TotalCredit = ledgershared.Round2(tb.Totals.TotalCredit)
	tb.Totals.Balance = ledgershared.Difference(tb.Totals.TotalDebit, tb.Totals.TotalCredit)
	return tb
}
