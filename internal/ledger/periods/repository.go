package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// ErrNoPeriod indicates no fiscal period covers the requested date.
var ErrNoPeriod = errors.New("ledger: no fiscal period covers date")

type Repository interface {
	FindByDate(ctx context.Context, businessID int64, date time.Time) (Period, error)
	Get(ctx context.Context, businessID, id int64) (Period, error)
	List(ctx context.Context, businessID int64) ([]Period, error)
	HasOverlap(ctx context.Context, businessID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, p Period) (Period, error)
	UpdateStatus(ctx context.Context, businessID, id int64, status PeriodStatus, closedBy *int64) (Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const periodColumns = `id, business_id, name, start_date, end_date, status, closed_by, created_at, updated_at`

func (r *repository) FindByDate(ctx context.Context, businessID int64, date time.Time) (Period, error) {
	return findByDate(ctx, r.db, businessID, date)
}

func (r *repository) Get(ctx context.Context, businessID, id int64) (Period, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE business_id=$1 AND id=$2`,
		businessID, id)
	p, err := scanPeriod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNoPeriod
	}
	if err != nil {
		return Period{}, fmt.Errorf("periods: get: %w", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, businessID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+periodColumns+` FROM fiscal_periods WHERE business_id=$1 ORDER BY start_date DESC`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("periods: list: %w", err)
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("periods: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("periods: iterate: %w", err)
	}
	return out, nil
}

func (r *repository) HasOverlap(ctx context.Context, businessID int64, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(
		SELECT 1 FROM fiscal_periods
		WHERE business_id=$1 AND start_date <= $3 AND end_date >= $2)`,
		businessID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("periods: overlap check: %w", err)
	}
	return exists, nil
}

func (r *repository) Insert(ctx context.Context, p Period) (Period, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO fiscal_periods (business_id, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.BusinessID, p.Name, p.StartDate, p.EndDate, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, fmt.Errorf("periods: insert: %w", err)
	}
	return p, nil
}

func (r *repository) UpdateStatus(ctx context.Context, businessID, id int64, status PeriodStatus, closedBy *int64) (Period, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE fiscal_periods SET status=$3, closed_by=$4, updated_at=now()
		WHERE business_id=$1 AND id=$2
		RETURNING `+periodColumns,
		businessID, id, status, closedBy)
	p, err := scanPeriod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrNoPeriod
	}
	if err != nil {
		return Period{}, fmt.Errorf("periods: update status: %w", err)
	}
	return p, nil
}

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.BusinessID, &p.Name, &p.StartDate, &p.EndDate,
		&p.Status, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// findByDate runs against a pool or an in-flight transaction so the posting
// engine can reuse it inside the caller-owned tx.
func findByDate(ctx context.Context, q db.DBTX, businessID int64, date time.Time) (Period, error) {
	var p Period
	err := q.QueryRow(ctx, `SELECT id, business_id, name, start_date, end_date, status, closed_by, created_at, updated_at
FROM fiscal_periods WHERE business_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`,
		businessID, date).
		Scan(&p.ID, &p.BusinessID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, ErrNoPeriod
		}
		return Period{}, err
	}
	return p, nil
}
