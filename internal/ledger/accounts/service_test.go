package accounts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	accounts map[int64]*Account
	byCode   map[string]*Account
	nextID   int64

	// accounts with at least one posted line
	linesFor map[int64]bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[int64]*Account),
		byCode:   make(map[string]*Account),
		linesFor: make(map[int64]bool),
		nextID:   1,
	}
}

func codeKey(businessID int64, code string) string {
	return fmt.Sprintf("%d:%s", businessID, code)
}

func (m *mockRepository) List(ctx context.Context, businessID int64) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.BusinessID == businessID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, businessID, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok || a.BusinessID != businessID {
		return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
	}
	return *a, nil
}

func (m *mockRepository) GetByCode(ctx context.Context, businessID int64, code string) (Account, error) {
	a, ok := m.byCode[codeKey(businessID, code)]
	if !ok {
		return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{code}}
	}
	return *a, nil
}

func (m *mockRepository) FirstActiveByType(ctx context.Context, businessID int64, typ AccountType) (Account, error) {
	var best *Account
	for _, a := range m.accounts {
		if a.BusinessID != businessID || a.Type != typ || !a.IsActive {
			continue
		}
		if best == nil || a.Code < best.Code {
			best = a
		}
	}
	if best == nil {
		return Account{}, shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{string(typ)}}
	}
	return *best, nil
}

func (m *mockRepository) ActiveByTypes(ctx context.Context, businessID int64, types []AccountType) (map[AccountType]Account, error) {
	found := make(map[AccountType]Account)
	var missing []string
	for _, t := range types {
		a, err := m.FirstActiveByType(ctx, businessID, t)
		if err != nil {
			missing = append(missing, string(t))
			continue
		}
		found[t] = a
	}
	if len(missing) > 0 {
		return nil, shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return found, nil
}

func (m *mockRepository) Insert(ctx context.Context, account Account) (Account, error) {
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.ID] = &account
	m.byCode[codeKey(account.BusinessID, account.Code)] = m.accounts[account.ID]
	return account, nil
}

func (m *mockRepository) InsertIfAbsent(ctx context.Context, account Account) (bool, error) {
	if _, exists := m.byCode[codeKey(account.BusinessID, account.Code)]; exists {
		return false, nil
	}
	_, err := m.Insert(ctx, account)
	return true, err
}

func (m *mockRepository) UpdateFields(ctx context.Context, businessID, id int64, fields map[string]any) error {
	a, ok := m.accounts[id]
	if !ok || a.BusinessID != businessID {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
	}
	if v, ok := fields["name"]; ok {
		a.Name = v.(string)
	}
	if v, ok := fields["description"]; ok {
		a.Description = v.(string)
	}
	if v, ok := fields["is_active"]; ok {
		a.IsActive = v.(bool)
	}
	if v, ok := fields["code"]; ok {
		delete(m.byCode, codeKey(businessID, a.Code))
		a.Code = v.(string)
		m.byCode[codeKey(businessID, a.Code)] = a
	}
	if v, ok := fields["type"]; ok {
		a.Type = AccountType(v.(string))
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, businessID, id int64) error {
	a, ok := m.accounts[id]
	if !ok || a.BusinessID != businessID {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: []string{fmt.Sprintf("id %d", id)}}
	}
	delete(m.byCode, codeKey(businessID, a.Code))
	delete(m.accounts, id)
	return nil
}

func (m *mockRepository) HasPostedLines(ctx context.Context, businessID, accountID int64) (bool, error) {
	return m.linesFor[accountID], nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestSeedIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	first, err := svc.Seed(context.Background(), 7)
	require.NoError(t, err)
	assert.Greater(t, first, 0)

	second, err := svc.Seed(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, second, "second seed must not insert anything")

	accounts, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, accounts, first)
}

func TestSeedRequiresBusinessID(t *testing.T) {
	svc := NewService(newMockRepository(), nil)
	_, err := svc.Seed(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetByTypesReportsAllMissing(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	_, err := repo.Insert(context.Background(), Account{BusinessID: 1, Code: "1000", Type: AccountTypeAsset, IsActive: true})
	require.NoError(t, err)

	_, err = svc.GetByTypes(context.Background(), 1, AccountTypeAsset, AccountTypeIncome, AccountTypeExpense)
	require.Error(t, err)
	var notFound shared.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ElementsMatch(t, []string{"income", "expense"}, notFound.Missing)
}

func TestGetByTypeSkipsInactive(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	_, err := repo.Insert(context.Background(), Account{BusinessID: 1, Code: "4000", Type: AccountTypeIncome, IsActive: false})
	require.NoError(t, err)

	_, err = svc.GetByType(context.Background(), 1, AccountTypeIncome)
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestUpdateSystemAccountGuards(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	sys, err := repo.Insert(context.Background(), Account{BusinessID: 1, Code: "1200", Name: "Accounts Receivable", Type: AccountTypeAsset, IsActive: true, IsSystem: true})
	require.NoError(t, err)

	newCode := "9999"
	_, err = svc.Update(context.Background(), 1, sys.ID, UpdateAccountRequest{Code: &newCode})
	assert.ErrorIs(t, err, shared.ErrGuardViolation)

	newType := "expense"
	_, err = svc.Update(context.Background(), 1, sys.ID, UpdateAccountRequest{Type: &newType})
	assert.ErrorIs(t, err, shared.ErrGuardViolation)

	// name and is_active stay mutable on the same account
	newName := "Trade Receivables"
	inactive := false
	updated, err := svc.Update(context.Background(), 1, sys.ID, UpdateAccountRequest{Name: &newName, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Trade Receivables", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "1200", updated.Code)
}

func TestUpdateCodeOnRegularAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	acc, err := repo.Insert(context.Background(), Account{BusinessID: 1, Code: "6100", Name: "Rent", Type: AccountTypeExpense, IsActive: true})
	require.NoError(t, err)

	newCode := "6150"
	updated, err := svc.Update(context.Background(), 1, acc.ID, UpdateAccountRequest{Code: &newCode})
	require.NoError(t, err)
	assert.Equal(t, "6150", updated.Code)
}

func TestDeleteGuards(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	sys, err := repo.Insert(ctx, Account{BusinessID: 1, Code: "4000", Type: AccountTypeIncome, IsActive: true, IsSystem: true})
	require.NoError(t, err)
	used, err := repo.Insert(ctx, Account{BusinessID: 1, Code: "6100", Type: AccountTypeExpense, IsActive: true})
	require.NoError(t, err)
	unused, err := repo.Insert(ctx, Account{BusinessID: 1, Code: "6200", Type: AccountTypeExpense, IsActive: true})
	require.NoError(t, err)
	repo.linesFor[used.ID] = true

	assert.ErrorIs(t, svc.Delete(ctx, 1, sys.ID), shared.ErrGuardViolation)
	assert.ErrorIs(t, svc.Delete(ctx, 1, used.ID), shared.ErrGuardViolation)
	require.NoError(t, svc.Delete(ctx, 1, unused.ID))

	_, err = svc.Get(ctx, 1, unused.ID)
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}
