package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *float64:
			*v = row[i].(float64)
		}
	}
	return nil
}

type fakeQuerier struct {
	lastSQL  string
	lastArgs []any
	rows     *fakeRows
	err      error
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	q.lastArgs = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

type fakeGauge struct {
	set []int
}

func (g *fakeGauge) SetUnbalancedJournals(n int) { g.set = append(g.set, n) }

func jobsTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScanReportsUnbalancedJournals(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{int64(7), int64(1), "JE-000007", 0.05},
		{int64(9), int64(2), "JE-000002", -1.20},
	}}}
	checker := NewIntegrityChecker(q, jobsTestLogger(), nil)

	out, err := checker.Scan(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].JournalID)
	assert.Equal(t, "JE-000007", out[0].Number)
	assert.Equal(t, 0.05, out[0].Difference)
	assert.Equal(t, int64(2), out[1].BusinessID)
	assert.Equal(t, []any{int64(1), shared.BalanceTolerance}, q.lastArgs)
}

func TestScanQueryReferencesKnownColumns(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}
	checker := NewIntegrityChecker(q, jobsTestLogger(), nil)
	_, err := checker.Scan(context.Background(), 0)
	require.NoError(t, err)

	journalCols := map[string]bool{"id": true, "business_id": true, "journal_number": true}
	lineCols := map[string]bool{"journal_id": true, "debit": true, "credit": true}
	for _, m := range regexp.MustCompile(`je\.([a-z_]+)`).FindAllStringSubmatch(q.lastSQL, -1) {
		assert.True(t, journalCols[m[1]], "journal_entries has no column %q", m[1])
	}
	for _, m := range regexp.MustCompile(`ge\.([a-z_]+)`).FindAllStringSubmatch(q.lastSQL, -1) {
		assert.True(t, lineCols[m[1]], "gl_entries has no column %q", m[1])
	}
}

func TestHandleSetsGauge(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{rows: [][]any{
		{int64(3), int64(1), "JE-000003", 0.02},
	}}}
	gauge := &fakeGauge{}
	checker := NewIntegrityChecker(q, jobsTestLogger(), gauge)

	task, err := NewGLIntegrityTask(GLIntegrityPayload{BusinessID: 1})
	require.NoError(t, err)
	require.NoError(t, checker.Handle(context.Background(), task))
	assert.Equal(t, []int{1}, gauge.set)
}

func TestHandlePropagatesScanError(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}
	checker := NewIntegrityChecker(q, jobsTestLogger(), &fakeGauge{})

	task, err := NewGLIntegrityTask(GLIntegrityPayload{})
	require.NoError(t, err)
	assert.Error(t, checker.Handle(context.Background(), task))
}

func TestHandleSkipsRetryOnMalformedPayload(t *testing.T) {
	checker := NewIntegrityChecker(&fakeQuerier{}, jobsTestLogger(), nil)
	task := asynq.NewTask(TaskGLIntegrity, []byte("{"))
	err := checker.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
