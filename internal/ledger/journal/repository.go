package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Repository encapsulates journal persistence. Write operations only exist on
// TxStore: every row the engine writes belongs to a caller-owned transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	// BindTx wraps a transaction handle owned by a calling business operation
	// so its rows and the journal rows commit or roll back together.
	BindTx(q db.DBTX) TxStore
	Get(ctx context.Context, businessID, id int64) (JournalEntry, error)
	List(ctx context.Context, businessID int64, limit, offset int) ([]JournalEntry, error)
}

// TxStore exposes the write operations available within a transaction.
type TxStore interface {
	// Querier returns the underlying transaction handle for collaborators
	// (the fiscal guard) that read inside the same transaction.
	Querier() db.DBTX
	ResolveAccountCodes(ctx context.Context, businessID int64, accountCodes []string) (map[string]int64, error)
	VerifyAccountIDs(ctx context.Context, businessID int64, ids []int64) error
	NextNumber(ctx context.Context, businessID int64) (int64, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertLines(ctx context.Context, entry JournalEntry, lines []LineInput) ([]Line, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{q: tx})
	})
}

func (r *repository) BindTx(q db.DBTX) TxStore {
	return &txStore{q: q}
}

const entryColumns = `id, business_id, journal_number, transaction_date, description, reference_type, COALESCE(reference_id, '00000000-0000-0000-0000-000000000000'::uuid), created_by, created_at`

func (r *repository) Get(ctx context.Context, businessID, id int64) (JournalEntry, error) {
	var e JournalEntry
	err := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE business_id=$1 AND id=$2`, businessID, id).
		Scan(&e.ID, &e.BusinessID, &e.Number, &e.Date, &e.Description, &e.ReferenceType, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, business_id, journal_id, transaction_date, description, account_id, debit, credit, reference_type, COALESCE(reference_id, '00000000-0000-0000-0000-000000000000'::uuid), created_at
FROM gl_entries WHERE business_id=$1 AND journal_id=$2 ORDER BY id ASC`, businessID, id)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.BusinessID, &line.JournalID, &line.Date, &line.Description,
			&line.AccountID, &line.Debit, &line.Credit, &line.ReferenceType, &line.ReferenceID, &line.CreatedAt); err != nil {
			return JournalEntry{}, err
		}
		e.Lines = append(e.Lines, line)
	}
	return e, rows.Err()
}

func (r *repository) List(ctx context.Context, businessID int64, limit, offset int) ([]JournalEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE business_id=$1 ORDER BY journal_number DESC LIMIT $2 OFFSET $3`, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Number, &e.Date, &e.Description,
			&e.ReferenceType, &e.ReferenceID, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type txStore struct {
	q db.DBTX
}

func (t *txStore) Querier() db.DBTX {
	return t.q
}

// ResolveAccountCodes maps codes to ids for active accounts. Every code that
// fails to resolve is reported in one error.
func (t *txStore) ResolveAccountCodes(ctx context.Context, businessID int64, accountCodes []string) (map[string]int64, error) {
	rows, err := t.q.Query(ctx, `SELECT code, id FROM gl_accounts WHERE business_id=$1 AND code = ANY($2) AND is_active`,
		businessID, accountCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	resolved := make(map[string]int64, len(accountCodes))
	for rows.Next() {
		var code string
		var id int64
		if err := rows.Scan(&code, &id); err != nil {
			return nil, err
		}
		resolved[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []string
	for _, code := range accountCodes {
		if _, ok := resolved[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return resolved, nil
}

func (t *txStore) VerifyAccountIDs(ctx context.Context, businessID int64, ids []int64) error {
	rows, err := t.q.Query(ctx, `SELECT id FROM gl_accounts WHERE business_id=$1 AND id = ANY($2) AND is_active`, businessID, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, fmt.Sprintf("id %d", id))
		}
	}
	if len(missing) > 0 {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return nil
}

// NextNumber takes the next value from the per-business counter row. The
// upsert increments atomically, so concurrent postings either queue on the
// row lock or surface a serialization failure for platform/db to retry.
func (t *txStore) NextNumber(ctx context.Context, businessID int64) (int64, error) {
	var next int64
	err := t.q.QueryRow(ctx, `INSERT INTO journal_sequences (business_id, next_number) VALUES ($1, 1)
ON CONFLICT (business_id) DO UPDATE SET next_number = journal_sequences.next_number + 1
RETURNING next_number`, businessID).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (t *txStore) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := t.q.QueryRow(ctx, `INSERT INTO journal_entries (business_id, journal_number, transaction_date, description, reference_type, reference_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at`,
		entry.BusinessID, entry.Number, entry.Date, entry.Description, entry.ReferenceType, nullUUID(entry.ReferenceID), entry.CreatedBy)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (t *txStore) InsertLines(ctx context.Context, entry JournalEntry, lines []LineInput) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, in := range lines {
		description := in.Description
		if description == "" {
			description = entry.Description
		}
		line := Line{
			BusinessID:    entry.BusinessID,
			JournalID:     entry.ID,
			Date:          entry.Date,
			Description:   description,
			AccountID:     in.AccountID,
			Debit:         in.Debit,
			Credit:        in.Credit,
			ReferenceType: entry.ReferenceType,
			ReferenceID:   entry.ReferenceID,
		}
		err := t.q.QueryRow(ctx, `INSERT INTO gl_entries (business_id, journal_id, transaction_date, description, account_id, debit, credit, reference_type, reference_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at`,
			line.BusinessID, line.JournalID, line.Date, line.Description, line.AccountID,
			line.Debit, line.Credit, line.ReferenceType, nullUUID(line.ReferenceID)).
			Scan(&line.ID, &line.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
