package periods

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgershared "github.com/ledgerline/ledgerline/internal/ledger/shared"
)

type mockRepository struct {
	nextID  int64
	periods map[int64]Period
}

func newMockRepository() *mockRepository {
	return &mockRepository{periods: make(map[int64]Period)}
}

func (m *mockRepository) FindByDate(ctx context.Context, businessID int64, date time.Time) (Period, error) {
	for _, p := range m.periods {
		if p.BusinessID == businessID && !date.Before(p.StartDate) && !date.After(p.EndDate) {
			return p, nil
		}
	}
	return Period{}, ErrNoPeriod
}

func (m *mockRepository) Get(ctx context.Context, businessID, id int64) (Period, error) {
	p, ok := m.periods[id]
	if !ok || p.BusinessID != businessID {
		return Period{}, ErrNoPeriod
	}
	return p, nil
}

func (m *mockRepository) List(ctx context.Context, businessID int64) ([]Period, error) {
	var out []Period
	for _, p := range m.periods {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) HasOverlap(ctx context.Context, businessID int64, start, end time.Time) (bool, error) {
	for _, p := range m.periods {
		if p.BusinessID == businessID && !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) Insert(ctx context.Context, p Period) (Period, error) {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.periods[p.ID] = p
	return p, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, businessID, id int64, status PeriodStatus, closedBy *int64) (Period, error) {
	p, ok := m.periods[id]
	if !ok || p.BusinessID != businessID {
		return Period{}, ErrNoPeriod
	}
	p.Status = status
	p.ClosedBy = closedBy
	m.periods[id] = p
	return p, nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func jan(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }
func feb(d int) time.Time { return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC) }

func TestCreatePeriod(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateInput{
		BusinessID: 1, Name: "2026-01", StartDate: jan(1), EndDate: jan(31),
	})
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusOpen, p.Status)
}

func TestCreatePeriodRejectsOverlap(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{
		BusinessID: 1, Name: "2026-01", StartDate: jan(1), EndDate: jan(31),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		BusinessID: 1, Name: "overlap", StartDate: jan(15), EndDate: feb(15),
	})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)

	// a different business may reuse the window
	_, err = svc.Create(context.Background(), CreateInput{
		BusinessID: 2, Name: "2026-01", StartDate: jan(1), EndDate: jan(31),
	})
	assert.NoError(t, err)
}

func TestCreatePeriodValidation(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), CreateInput{BusinessID: 1, Name: "x", StartDate: jan(31), EndDate: jan(1)})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{BusinessID: 1, StartDate: jan(1), EndDate: jan(31)})
	assert.ErrorIs(t, err, ledgershared.ErrValidation)
}

func TestPeriodLifecycle(t *testing.T) {
	svc, _ := newTestService()
	actor := int64(7)
	p, err := svc.Create(context.Background(), CreateInput{
		BusinessID: 1, Name: "2026-01", StartDate: jan(1), EndDate: jan(31),
	})
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), 1, p.ID, &actor)
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, actor, *closed.ClosedBy)

	reopened, err := svc.Reopen(context.Background(), 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusOpen, reopened.Status)

	_, err = svc.Close(context.Background(), 1, p.ID, &actor)
	require.NoError(t, err)
	locked, err := svc.Lock(context.Background(), 1, p.ID, &actor)
	require.NoError(t, err)
	assert.Equal(t, PeriodStatusLocked, locked.Status)
}

func TestInvalidTransitionsRejected(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Create(context.Background(), CreateInput{
		BusinessID: 1, Name: "2026-01", StartDate: jan(1), EndDate: jan(31),
	})
	require.NoError(t, err)

	// open periods cannot be locked or reopened
	_, err = svc.Lock(context.Background(), 1, p.ID, nil)
	assert.ErrorIs(t, err, ledgershared.ErrGuardViolation)
	_, err = svc.Reopen(context.Background(), 1, p.ID)
	assert.ErrorIs(t, err, ledgershared.ErrGuardViolation)

	// locked periods stay shut
	_, err = svc.Close(context.Background(), 1, p.ID, nil)
	require.NoError(t, err)
	_, err = svc.Lock(context.Background(), 1, p.ID, nil)
	require.NoError(t, err)
	_, err = svc.Reopen(context.Background(), 1, p.ID)
	assert.ErrorIs(t, err, ledgershared.ErrGuardViolation)
}

func TestTransitionUnknownPeriod(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Close(context.Background(), 1, 42, nil)
	assert.ErrorIs(t, err, ErrNoPeriod)
}
