package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ledgershared "github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// Repository is the read side of the ledger. It performs no writes and always
// recomputes from the stored lines; freshness and auditability beat caching.
type Repository interface {
	SumAccount(ctx context.Context, businessID, accountID int64, asOf *time.Time) (BalanceSummary, error)
	TrialBalanceRows(ctx context.Context, businessID int64, start, end time.Time) ([]AccountActivity, error)
	Entries(ctx context.Context, businessID int64, f EntriesFilter) ([]EntryRow, int, error)
	OpeningBalance(ctx context.Context, businessID int64, f EntriesFilter) (float64, error)
	AccountWithBalanceByCode(ctx context.Context, businessID int64, code string) (AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) SumAccount(ctx context.Context, businessID, accountID int64, asOf *time.Time) (BalanceSummary, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM gl_accounts WHERE business_id=$1 AND id=$2)`,
		businessID, accountID).Scan(&exists); err != nil {
		return BalanceSummary{}, err
	}
	if !exists {
		return BalanceSummary{}, ledgershared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", accountID)}}
	}
	query := `SELECT COALESCE(SUM(debit),0), COALESCE(SUM(credit),0) FROM gl_entries WHERE business_id=$1 AND account_id=$2`
	args := []any{businessID, accountID}
	if asOf != nil {
		query += ` AND transaction_date <= $3`
		args = append(args, *asOf)
	}
	var s BalanceSummary
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.TotalDebit, &s.TotalCredit); err != nil {
		return BalanceSummary{}, err
	}
	return s, nil
}

// TrialBalanceRows left-joins window activity onto every active account, so
// accounts without movement still appear with zero totals.
func (r *repository) TrialBalanceRows(ctx context.Context, businessID int64, start, end time.Time) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type,
	COALESCE(SUM(e.debit),0) AS total_debit,
	COALESCE(SUM(e.credit),0) AS total_credit
FROM gl_accounts a
LEFT JOIN gl_entries e
	ON e.account_id = a.id AND e.business_id = a.business_id
	AND e.transaction_date BETWEEN $2 AND $3
WHERE a.business_id = $1 AND a.is_active
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`, businessID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountActivity
	for rows.Next() {
		var row AccountActivity
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &row.Type, &row.TotalDebit, &row.TotalCredit); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func entryConditions(businessID int64, f EntriesFilter) ([]string, []any) {
	conditions := []string{"e.business_id = $1"}
	args := []any{businessID}
	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		conditions = append(conditions, fmt.Sprintf("e.account_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		conditions = append(conditions, fmt.Sprintf("e.transaction_date >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		conditions = append(conditions, fmt.Sprintf("e.transaction_date <= $%d", len(args)))
	}
	return conditions, args
}

func (r *repository) Entries(ctx context.Context, businessID int64, f EntriesFilter) ([]EntryRow, int, error) {
	conditions, args := entryConditions(businessID, f)
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM gl_entries e WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT e.id, e.journal_id, j.journal_number, e.transaction_date, e.description,
	e.account_id, a.code, a.name, e.debit, e.credit, e.reference_type, e.created_at
FROM gl_entries e
JOIN journal_entries j ON j.id = e.journal_id
JOIN gl_accounts a ON a.id = e.account_id
WHERE %s
ORDER BY e.transaction_date DESC, e.created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var row EntryRow
		if err := rows.Scan(&row.ID, &row.JournalID, &row.JournalNumber, &row.Date, &row.Description,
			&row.AccountID, &row.AccountCode, &row.AccountName, &row.Debit, &row.Credit,
			&row.ReferenceType, &row.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// OpeningBalance is a single signed aggregate over all matching lines dated
// strictly before the window start, not a per-row running total.
func (r *repository) OpeningBalance(ctx context.Context, businessID int64, f EntriesFilter) (float64, error) {
	if f.StartDate == nil {
		return 0, nil
	}
	before := EntriesFilter{AccountID: f.AccountID}
	conditions, args := entryConditions(businessID, before)
	args = append(args, *f.StartDate)
	conditions = append(conditions, fmt.Sprintf("e.transaction_date < $%d", len(args)))
	var opening float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(e.debit - e.credit),0) FROM gl_entries e WHERE `+
		strings.Join(conditions, " AND "), args...).Scan(&opening)
	return opening, err
}

func (r *repository) AccountWithBalanceByCode(ctx context.Context, businessID int64, code string) (AccountBalance, error) {
	var ab AccountBalance
	err := r.db.QueryRow(ctx, `SELECT a.id, a.code, a.name, a.type, a.is_active,
	COALESCE(SUM(e.debit),0), COALESCE(SUM(e.credit),0)
FROM gl_accounts a
LEFT JOIN gl_entries e ON e.account_id = a.id AND e.business_id = a.business_id
WHERE a.business_id = $1 AND a.code = $2
GROUP BY a.id, a.code, a.name, a.type, a.is_active`, businessID, code).
		Scan(&ab.AccountID, &ab.Code, &ab.Name, &ab.Type, &ab.IsActive, &ab.TotalDebit, &ab.TotalCredit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountBalance{}, ledgershared.AccountNotFoundError{BusinessID: businessID, Missing: []string{code}}
		}
		return AccountBalance{}, err
	}
	return ab, nil
}
