package periods

import (
	"context"
	"log/slog"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// Service manages fiscal period lifecycle. Periods gate journal posting:
// open periods accept entries, closed and locked ones reject them.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInput describes a new fiscal period.
type CreateInput struct {
	BusinessID int64
	Name       string
	StartDate  time.Time
	EndDate    time.Time
}

// Create opens a new period. Windows may not overlap an existing period for
// the same business.
func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	if in.BusinessID <= 0 {
		return Period{}, shared.ValidationError{Field: "business_id", Reason: "required"}
	}
	if in.Name == "" {
		return Period{}, shared.ValidationError{Field: "name", Reason: "required"}
	}
	if in.EndDate.Before(in.StartDate) {
		return Period{}, shared.ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	overlap, err := s.repo.HasOverlap(ctx, in.BusinessID, in.StartDate, in.EndDate)
	if err != nil {
		return Period{}, err
	}
	if overlap {
		return Period{}, shared.ValidationError{Field: "start_date", Reason: "window overlaps an existing period"}
	}
	return s.repo.Insert(ctx, Period{
		BusinessID: in.BusinessID,
		Name:       in.Name,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     PeriodStatusOpen,
	})
}

// List returns the business's periods, newest first.
func (s *Service) List(ctx context.Context, businessID int64) ([]Period, error) {
	return s.repo.List(ctx, businessID)
}

// Get returns one period.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Period, error) {
	return s.repo.Get(ctx, businessID, id)
}

// Close transitions an open period to closed, recording who closed it.
func (s *Service) Close(ctx context.Context, businessID, id int64, closedBy *int64) (Period, error) {
	return s.transition(ctx, businessID, id, PeriodStatusClosed, closedBy, PeriodStatusOpen)
}

// Reopen transitions a closed period back to open. Locked periods stay shut.
func (s *Service) Reopen(ctx context.Context, businessID, id int64) (Period, error) {
	return s.transition(ctx, businessID, id, PeriodStatusOpen, nil, PeriodStatusClosed)
}

// Lock permanently freezes a closed period.
func (s *Service) Lock(ctx context.Context, businessID, id int64, lockedBy *int64) (Period, error) {
	return s.transition(ctx, businessID, id, PeriodStatusLocked, lockedBy, PeriodStatusClosed)
}

func (s *Service) transition(ctx context.Context, businessID, id int64, to PeriodStatus, actor *int64, allowedFrom ...PeriodStatus) (Period, error) {
	current, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return Period{}, err
	}
	ok := false
	for _, from := range allowedFrom {
		if current.Status == from {
			ok = true
			break
		}
	}
	if !ok {
		return Period{}, shared.GuardError{
			Reason: "period " + current.Name + " is " + string(current.Status) + ", cannot transition to " + string(to),
		}
	}
	updated, err := s.repo.UpdateStatus(ctx, businessID, id, to, actor)
	if err != nil {
		return Period{}, err
	}
	s.logger.Info("fiscal period transition",
		slog.Int64("business_id", businessID),
		slog.String("period", updated.Name),
		slog.String("status", string(updated.Status)))
	return updated, nil
}
