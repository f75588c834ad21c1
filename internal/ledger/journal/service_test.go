package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockAccount struct {
	id     int64
	code   string
	active bool
}

type mockRepository struct {
	accounts map[string]mockAccount // key businessID:code
	byID     map[int64]mockAccount

	entries  []JournalEntry
	lines    []Line
	sequence map[int64]int64
	nextID   int64

	txError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[string]mockAccount),
		byID:     make(map[int64]mockAccount),
		sequence: make(map[int64]int64),
		nextID:   1,
	}
}

func (m *mockRepository) addAccount(businessID int64, id int64, code string, active bool) {
	acc := mockAccount{id: id, code: code, active: active}
	m.accounts[fmt.Sprintf("%d:%s", businessID, code)] = acc
	m.byID[id] = acc
}

// WithTx buffers writes and discards them when fn fails, mirroring rollback.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if m.txError != nil {
		return m.txError
	}
	tx := &mockTxStore{repo: m, businessSeq: make(map[int64]int64)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.entries = append(m.entries, tx.entries...)
	m.lines = append(m.lines, tx.lines...)
	for b, n := range tx.businessSeq {
		m.sequence[b] = n
	}
	return nil
}

func (m *mockRepository) BindTx(q db.DBTX) TxStore {
	return &mockTxStore{repo: m, businessSeq: make(map[int64]int64), autoCommit: true}
}

func (m *mockRepository) Get(ctx context.Context, businessID, id int64) (JournalEntry, error) {
	for _, e := range m.entries {
		if e.BusinessID == businessID && e.ID == id {
			entry := e
			entry.Lines = nil
			for _, l := range m.lines {
				if l.JournalID == id {
					entry.Lines = append(entry.Lines, l)
				}
			}
			return entry, nil
		}
	}
	return JournalEntry{}, shared.ErrJournalNotFound
}

func (m *mockRepository) List(ctx context.Context, businessID int64, limit, offset int) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range m.entries {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockTxStore struct {
	repo        *mockRepository
	entries     []JournalEntry
	lines       []Line
	businessSeq map[int64]int64
	autoCommit  bool

	resolveCalls int
}

func (t *mockTxStore) Querier() db.DBTX {
	return nil
}

func (t *mockTxStore) ResolveAccountCodes(ctx context.Context, businessID int64, accountCodes []string) (map[string]int64, error) {
	t.resolveCalls++
	resolved := make(map[string]int64)
	var missing []string
	for _, code := range accountCodes {
		acc, ok := t.repo.accounts[fmt.Sprintf("%d:%s", businessID, code)]
		if !ok || !acc.active {
			missing = append(missing, code)
			continue
		}
		resolved[code] = acc.id
	}
	if len(missing) > 0 {
		return nil, shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return resolved, nil
}

func (t *mockTxStore) VerifyAccountIDs(ctx context.Context, businessID int64, ids []int64) error {
	var missing []string
	for _, id := range ids {
		acc, ok := t.repo.byID[id]
		if !ok || !acc.active {
			missing = append(missing, fmt.Sprintf("id %d", id))
		}
	}
	if len(missing) > 0 {
		return shared.AccountNotFoundError{BusinessID: businessID, Missing: missing}
	}
	return nil
}

func (t *mockTxStore) NextNumber(ctx context.Context, businessID int64) (int64, error) {
	base, ok := t.businessSeq[businessID]
	if !ok {
		base = t.repo.sequence[businessID]
	}
	next := base + 1
	t.businessSeq[businessID] = next
	return next, nil
}

func (t *mockTxStore) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	entry.ID = t.repo.nextID
	t.repo.nextID++
	entry.CreatedAt = time.Now()
	t.entries = append(t.entries, entry)
	if t.autoCommit {
		t.repo.entries = append(t.repo.entries, entry)
	}
	return entry, nil
}

func (t *mockTxStore) InsertLines(ctx context.Context, entry JournalEntry, lines []LineInput) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, in := range lines {
		line := Line{
			ID:         t.repo.nextID,
			BusinessID: entry.BusinessID,
			JournalID:  entry.ID,
			Date:       entry.Date,
			AccountID:  in.AccountID,
			Debit:      in.Debit,
			Credit:     in.Credit,
			CreatedAt:  time.Now(),
		}
		t.repo.nextID++
		out = append(out, line)
	}
	t.lines = append(t.lines, out...)
	if t.autoCommit {
		t.repo.lines = append(t.repo.lines, out...)
	}
	return out, nil
}

type stubGuard struct {
	err   error
	calls int
}

func (g *stubGuard) CheckPostingAllowed(ctx context.Context, q db.DBTX, businessID int64, date time.Time) error {
	g.calls++
	return g.err
}

// ============================================================================
// TESTS
// ============================================================================

func testDate() time.Time {
	return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *mockRepository, *stubGuard) {
	repo := newMockRepository()
	repo.addAccount(1, 10, "1200", true) // Accounts Receivable
	repo.addAccount(1, 11, "4000", true) // Sales Revenue
	repo.addAccount(1, 12, "2100", true) // Sales Tax Payable
	guard := &stubGuard{}
	return NewService(repo, guard, nil), repo, guard
}

func TestPostBalancedEntry(t *testing.T) {
	svc, repo, guard := newTestService()

	entry, err := svc.Post(context.Background(), PostingInput{
		BusinessID:    1,
		Date:          testDate(),
		Description:   "Invoice INV-001",
		ReferenceType: "invoice",
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 1000},
			{AccountCode: "4000", Credit: 1000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "JE-000001", entry.Number)
	assert.Equal(t, 1, guard.calls)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, int64(10), entry.Lines[0].AccountID, "code must resolve to account id")
	assert.Equal(t, int64(11), entry.Lines[1].AccountID)

	var debit, credit float64
	for _, l := range repo.lines {
		debit += l.Debit
		credit += l.Credit
	}
	assert.Equal(t, debit, credit)
}

func TestPostUnbalancedWritesNothing(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 100},
			{AccountCode: "4000", Credit: 90},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnbalanced)

	var dee shared.DoubleEntryError
	require.ErrorAs(t, err, &dee)
	assert.Equal(t, 100.0, dee.TotalDebit)
	assert.Equal(t, 90.0, dee.TotalCredit)
	assert.Equal(t, 10.0, dee.Difference)

	assert.Empty(t, repo.entries, "failed posting must leave zero rows")
	assert.Empty(t, repo.lines)
}

func TestPostToleranceBoundary(t *testing.T) {
	svc, _, _ := newTestService()

	// difference exactly 0.01 passes
	_, err := svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 500.01},
			{AccountCode: "4000", Credit: 500.00},
		},
	})
	require.NoError(t, err)

	// difference 0.02 fails
	_, err = svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 500.02},
			{AccountCode: "4000", Credit: 500.00},
		},
	})
	assert.ErrorIs(t, err, shared.ErrUnbalanced)
}

func TestPostNumbersStrictlyIncrease(t *testing.T) {
	svc, _, _ := newTestService()

	for i := 1; i <= 3; i++ {
		entry, err := svc.Post(context.Background(), PostingInput{
			BusinessID: 1,
			Date:       testDate(),
			Lines: []LineInput{
				{AccountCode: "1200", Debit: 50},
				{AccountCode: "4000", Credit: 50},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, FormatNumber(int64(i)), entry.Number)
	}
}

func TestPostDropsZeroLines(t *testing.T) {
	svc, repo, _ := newTestService()

	entry, err := svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 100},
			{AccountCode: "2100", Debit: 0, Credit: 0},
			{AccountCode: "4000", Credit: 100},
		},
	})
	require.NoError(t, err)
	assert.Len(t, entry.Lines, 2, "no-op lines are never stored")
	assert.Len(t, repo.lines, 2)
}

func TestPostRoundsPerLineBeforeSummation(t *testing.T) {
	svc, _, _ := newTestService()

	// Ten debit lines of 0.1 each accumulate binary error unless each line is
	// rounded before summation.
	lines := make([]LineInput, 0, 11)
	for i := 0; i < 10; i++ {
		lines = append(lines, LineInput{AccountCode: "1200", Debit: 0.1})
	}
	lines = append(lines, LineInput{AccountCode: "4000", Credit: 1.00})
	_, err := svc.Post(context.Background(), PostingInput{BusinessID: 1, Date: testDate(), Lines: lines})
	require.NoError(t, err)
}

func TestPostReportsAllMissingCodes(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "9991", Debit: 10},
			{AccountCode: "9992", Credit: 10},
		},
	})
	require.Error(t, err)
	var notFound shared.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ElementsMatch(t, []string{"9991", "9992"}, notFound.Missing)
	assert.Empty(t, repo.entries)
}

func TestPostRejectsClosedPeriod(t *testing.T) {
	svc, repo, guard := newTestService()
	guard.err = shared.PeriodClosedError{PeriodName: "January 2026", Status: "locked"}

	_, err := svc.Post(context.Background(), PostingInput{
		BusinessID: 1,
		Date:       testDate(),
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 1000},
			{AccountCode: "4000", Credit: 1000},
		},
	})
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
	assert.Empty(t, repo.entries, "no rows written for blocked period")
	assert.Empty(t, repo.lines)
}

func TestPostValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   PostingInput
	}{
		{"missing business", PostingInput{Date: testDate(), Lines: []LineInput{{AccountCode: "1200", Debit: 1}}}},
		{"missing date", PostingInput{BusinessID: 1, Lines: []LineInput{{AccountCode: "1200", Debit: 1}}}},
		{"no lines", PostingInput{BusinessID: 1, Date: testDate()}},
		{"no account", PostingInput{BusinessID: 1, Date: testDate(), Lines: []LineInput{{Debit: 1}}}},
		{"negative amount", PostingInput{BusinessID: 1, Date: testDate(), Lines: []LineInput{{AccountCode: "1200", Debit: -5}, {AccountCode: "4000", Credit: -5}}}},
		{"both sides", PostingInput{BusinessID: 1, Date: testDate(), Lines: []LineInput{{AccountCode: "1200", Debit: 5, Credit: 5}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Post(ctx, tc.in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestReversePostsOffsettingEntry(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	original, err := svc.Post(ctx, PostingInput{
		BusinessID:  1,
		Date:        testDate(),
		Description: "Invoice INV-001",
		Lines: []LineInput{
			{AccountCode: "1200", Debit: 1000},
			{AccountCode: "4000", Credit: 1000},
		},
	})
	require.NoError(t, err)

	reversal, err := svc.Reverse(ctx, 1, original.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "JE-000002", reversal.Number)
	assert.Equal(t, "reversal", reversal.ReferenceType)
	assert.Equal(t, "Reversal of JE-000001", reversal.Description)
	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, 1000.0, reversal.Lines[0].Credit, "debit and credit swap")
	assert.Equal(t, 1000.0, reversal.Lines[1].Debit)

	// original untouched
	got, err := svc.Get(ctx, 1, original.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.Lines[0].Debit)
	assert.Len(t, repo.entries, 2)
}

func TestNormalizeLegacyFlatShape(t *testing.T) {
	req := PostRequest{
		BusinessID:    1,
		Date:          "2026-01-05",
		DebitAccount:  "1200",
		CreditAccount: "4000",
		Amount:        250.50,
	}
	in, err := req.Normalize()
	require.NoError(t, err)
	require.Len(t, in.Lines, 2)
	assert.Equal(t, LineInput{AccountCode: "1200", Debit: 250.50}, in.Lines[0])
	assert.Equal(t, LineInput{AccountCode: "4000", Credit: 250.50}, in.Lines[1])
}

func TestNormalizeRejectsMixedShapes(t *testing.T) {
	req := PostRequest{
		BusinessID:   1,
		Date:         "2026-01-05",
		Lines:        []LineInput{{AccountCode: "1200", Debit: 10}},
		DebitAccount: "1200",
		Amount:       10,
	}
	_, err := req.Normalize()
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "JE-000001", FormatNumber(1))
	assert.Equal(t, "JE-012345", FormatNumber(12345))
}
