package receivables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// ErrInvoiceNotFound indicates the invoice does not exist for the business.
var ErrInvoiceNotFound = errors.New("receivables: invoice not found")

// Repository defines invoice persistence. Write methods take a db.DBTX so
// the service can run them inside the same transaction as the GL posting.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error
	Insert(ctx context.Context, q db.DBTX, inv Invoice) (Invoice, error)
	SetJournal(ctx context.Context, q db.DBTX, id, journalID int64) error
	MarkPaid(ctx context.Context, q db.DBTX, businessID, id int64, paidAt time.Time) error
	Get(ctx context.Context, businessID, id int64) (Invoice, error)
	List(ctx context.Context, businessID int64, limit, offset int) ([]Invoice, error)
	ListOutstanding(ctx context.Context, businessID int64) ([]Invoice, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Postgres-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, q db.DBTX) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

const invoiceColumns = `id, uid, business_id, number, customer_name, subtotal, tax_amount, total,
	status, COALESCE(journal_id, 0), issued_at, due_at, paid_at, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, q db.DBTX, inv Invoice) (Invoice, error) {
	const query = `
		INSERT INTO invoices (uid, business_id, number, customer_name, subtotal, tax_amount, total, status, issued_at, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	if inv.UID == uuid.Nil {
		inv.UID = uuid.New()
	}
	err := q.QueryRow(ctx, query,
		inv.UID, inv.BusinessID, inv.Number, inv.CustomerName,
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.Status, inv.IssuedAt, inv.DueAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return Invoice{}, fmt.Errorf("receivables: insert invoice: %w", err)
	}
	return inv, nil
}

func (r *repository) SetJournal(ctx context.Context, q db.DBTX, id, journalID int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE invoices SET journal_id = $2, updated_at = now() WHERE id = $1`, id, journalID)
	if err != nil {
		return fmt.Errorf("receivables: set journal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) MarkPaid(ctx context.Context, q db.DBTX, businessID, id int64, paidAt time.Time) error {
	tag, err := q.Exec(ctx, `
		UPDATE invoices SET status = $3, paid_at = $4, updated_at = now()
		WHERE business_id = $1 AND id = $2 AND status = $5`,
		businessID, id, StatusPaid, paidAt, StatusIssued)
	if err != nil {
		return fmt.Errorf("receivables: mark paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, businessID, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE business_id = $1 AND id = $2`,
		businessID, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	if err != nil {
		return Invoice{}, fmt.Errorf("receivables: get invoice: %w", err)
	}
	return inv, nil
}

func (r *repository) List(ctx context.Context, businessID int64, limit, offset int) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE business_id = $1
		ORDER BY issued_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("receivables: list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *repository) ListOutstanding(ctx context.Context, businessID int64) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE business_id = $1 AND status = $2
		ORDER BY due_at ASC`,
		businessID, StatusIssued)
	if err != nil {
		return nil, fmt.Errorf("receivables: list outstanding: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.UID, &inv.BusinessID, &inv.Number, &inv.CustomerName,
		&inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.Status, &inv.JournalID,
		&inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("receivables: scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("receivables: iterate invoices: %w", err)
	}
	return out, nil
}
