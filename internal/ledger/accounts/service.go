package accounts

import (
	"context"
	"log/slog"

	"github.com/ledgerline/ledgerline/internal/ledger/codes"
	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// Service owns chart-of-accounts business rules: seeding and mutation guards.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Seed idempotently inserts the default chart for a business. Codes that
// already exist are skipped, never overwritten.
func (s *Service) Seed(ctx context.Context, businessID int64) (int, error) {
	if businessID <= 0 {
		return 0, shared.ValidationError{Field: "business_id", Reason: "required"}
	}
	var inserted int
	for _, def := range codes.Defaults() {
		created, err := s.repo.InsertIfAbsent(ctx, Account{
			BusinessID: businessID,
			Code:       def.Code,
			Name:       def.Name,
			Type:       AccountType(def.Type),
			SubType:    def.SubType,
			IsActive:   true,
			IsSystem:   def.System,
		})
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}
	if s.logger != nil {
		s.logger.Info("chart seeded", slog.Int64("business_id", businessID), slog.Int("inserted", inserted))
	}
	return inserted, nil
}

func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (Account, error) {
	typ := AccountType(req.Type)
	if !typ.Valid() {
		return Account{}, shared.ValidationError{Field: "type", Reason: "unknown account type"}
	}
	return s.repo.Insert(ctx, Account{
		BusinessID: req.BusinessID,
		Code:       req.Code,
		Name:       req.Name,
		Type:       typ,
		SubType:    req.SubType,
		IsActive:   true,
		ParentID:   req.ParentID,
	})
}

func (s *Service) List(ctx context.Context, businessID int64) ([]Account, error) {
	return s.repo.List(ctx, businessID)
}

func (s *Service) Get(ctx context.Context, businessID, id int64) (Account, error) {
	return s.repo.Get(ctx, businessID, id)
}

func (s *Service) GetByCode(ctx context.Context, businessID int64, code string) (Account, error) {
	return s.repo.GetByCode(ctx, businessID, code)
}

// GetByType returns the first active account of the given type. At most one
// account is returned even when several exist.
func (s *Service) GetByType(ctx context.Context, businessID int64, typ AccountType) (Account, error) {
	return s.repo.FirstActiveByType(ctx, businessID, typ)
}

// GetByTypes resolves one active account per type, reporting every missing
// type in a single error.
func (s *Service) GetByTypes(ctx context.Context, businessID int64, types ...AccountType) (map[AccountType]Account, error) {
	return s.repo.ActiveByTypes(ctx, businessID, types)
}

// Update applies name/description/isActive changes to any account. Code and
// type changes are rejected on system accounts.
func (s *Service) Update(ctx context.Context, businessID, id int64, req UpdateAccountRequest) (Account, error) {
	current, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return Account{}, err
	}
	if current.IsSystem && req.touchesGuardedFields() {
		return Account{}, shared.GuardError{AccountID: id, Reason: "code and type of system accounts cannot change"}
	}
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Code != nil {
		fields["code"] = *req.Code
	}
	if req.Type != nil {
		if !AccountType(*req.Type).Valid() {
			return Account{}, shared.ValidationError{Field: "type", Reason: "unknown account type"}
		}
		fields["type"] = *req.Type
	}
	if err := s.repo.UpdateFields(ctx, businessID, id, fields); err != nil {
		return Account{}, err
	}
	return s.repo.Get(ctx, businessID, id)
}

// Delete removes an unused, non-system account. System accounts can never be
// deleted; accounts with any posted line must be deactivated instead.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	current, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return err
	}
	if current.IsSystem {
		return shared.GuardError{AccountID: id, Reason: "system accounts cannot be deleted"}
	}
	used, err := s.repo.HasPostedLines(ctx, businessID, id)
	if err != nil {
		return err
	}
	if used {
		return shared.GuardError{AccountID: id, Reason: "account has posted lines; deactivate it instead"}
	}
	return s.repo.Delete(ctx, businessID, id)
}
