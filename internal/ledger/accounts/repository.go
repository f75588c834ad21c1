package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

const accountColumns = `id, business_id, code, name, description, type, sub_type, is_active, is_system, parent_id, created_at, updated_at`

type Repository interface {
	List(ctx context.Context, businessID int64) ([]Account, error)
	Get(ctx context.Context, businessID, id int64) (Account, error)
	GetByCode(ctx context.Context, businessID int64, code string) (Account, error)
	FirstActiveByType(ctx context.Context, businessID int64, typ AccountType) (Account, error)
	ActiveByTypes(ctx context.Context, businessID int64, types []AccountType) (map[AccountType]Account, error)
	Insert(ctx context.Context, account Account) (Account, error)
	InsertIfAbsent(ctx context.Context, account Account) (bool, error)
	UpdateFields(ctx context.Context, businessID, id int64, fields map[string]any) error
	Delete(ctx context.Context, businessID, id int64) error
	HasPostedLines(ctx context.Context, businessID, accountID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.BusinessID, &a.Code, &a.Name, &a.Description, &a.Type, &a.SubType,
		&a.IsActive, &a.IsSystem, &a.ParentID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, businessID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM gl_accounts WHERE business_id=$1 ORDER BY code`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, businessID, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE business_id=$1 AND id=$2`, businessID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) GetByCode(ctx context.Context, businessID int64, code string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE business_id=$1 AND code=$2`, businessID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{code}}
		}
		return Account{}, err
	}
	return a, nil
}

// FirstActiveByType returns at most one account; callers must not assume more
// than one account per type exists.
func (r *repository) FirstActiveByType(ctx context.Context, businessID int64, typ AccountType) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM gl_accounts WHERE business_id=$1 AND type=$2 AND is_active ORDER BY code LIMIT 1`,
		businessID, typ))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{string(typ)}}
		}
		return Account{}, err
	}
	return a, nil
}

// ActiveByTypes resolves one account per requested type. Missing types are
// reported together in a single AccountNotFoundError.
func (r *repository) ActiveByTypes(ctx context.Context, businessID int64, types []AccountType) (map[AccountType]Account, error) {
	params := make([]string, len(types))
	for i, t := range types {
		params[i] = string(t)
	}
	rows, err := r.db.Query(ctx, `SELECT DISTINCT ON (type) `+accountColumns+`
FROM gl_accounts WHERE business_id=$1 AND type = ANY($2) AND is_active ORDER BY type, code`, businessID, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[AccountType]Account, len(types))
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		found[a.Type] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []string
	for _, t := range types {
		if _, ok := found[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return nil, shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return found, nil
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO gl_accounts (business_id, code, name, description, type, sub_type, is_active, is_system, parent_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		account.BusinessID, account.Code, account.Name, account.Description, account.Type, account.SubType,
		account.IsActive, account.IsSystem, account.ParentID)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return Account{}, err
	}
	return account, nil
}

// InsertIfAbsent inserts a seed account, skipping codes that already exist.
// Existing rows are never overwritten.
func (r *repository) InsertIfAbsent(ctx context.Context, account Account) (bool, error) {
	tag, err := r.db.Exec(ctx, `INSERT INTO gl_accounts (business_id, code, name, description, type, sub_type, is_active, is_system, parent_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (business_id, code) DO NOTHING`,
		account.BusinessID, account.Code, account.Name, account.Description, account.Type, account.SubType,
		account.IsActive, account.IsSystem, account.ParentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repository) UpdateFields(ctx context.Context, businessID, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	argPos := 1
	for _, col := range []string{"name", "description", "is_active", "code", "type"} {
		val, ok := fields[col]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	sets = append(sets, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE gl_accounts SET %s WHERE business_id = $%d AND id = $%d",
		strings.Join(sets, ", "), argPos, argPos+1)
	args = append(args, businessID, id)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gl_accounts WHERE business_id=$1 AND id=$2`, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
	}
	return nil
}

// HasPostedLines uses an existence probe rather than a count; one referencing
// line is enough to block deletion.
func (r *repository) HasPostedLines(ctx context.Context, businessID, accountID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM gl_entries WHERE business_id=$1 AND account_id=$2)`,
		businessID, accountID).Scan(&exists)
	return exists, err
}
