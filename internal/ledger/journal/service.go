package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Guard gates posting dates against fiscal periods. It reads through the
// caller's transaction handle so the check and the insert see one snapshot.
type Guard interface {
	CheckPostingAllowed(ctx context.Context, q db.DBTX, businessID int64, date time.Time) error
}

// Bumper publishes an invalidation signal after a journal commits.
type Bumper interface {
	Bump(ctx context.Context, businessID int64) error
}

// Metrics counts posted journals.
type Metrics interface {
	IncJournalPosted()
}

// Service is the journal posting engine. It validates and persists balanced
// entries but never owns the transaction: writes happen through the caller's
// handle so a business operation and its ledger effect are atomic.
type Service struct {
	repo    Repository
	guard   Guard
	logger  *slog.Logger
	bumper  Bumper
	metrics Metrics
}

func NewService(repo Repository, guard Guard, logger *slog.Logger) *Service {
	return &Service{repo: repo, guard: guard, logger: logger}
}

// WithBumper configures post-commit change notification.
func (s *Service) WithBumper(b Bumper) *Service {
	s.bumper = b
	return s
}

// WithMetrics configures posting counters.
func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

// PostTx validates and writes one journal entry through the supplied
// transaction store. Any returned error must abort the caller's transaction;
// nothing this method wrote may become visible on its own.
func (s *Service) PostTx(ctx context.Context, tx TxStore, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if s.guard != nil {
		if err := s.guard.CheckPostingAllowed(ctx, tx.Querier(), in.BusinessID, in.Date); err != nil {
			return JournalEntry{}, err
		}
	}

	lines := roundAndDrop(in.Lines)
	if len(lines) == 0 {
		return JournalEntry{}, shared.ValidationError{Field: "lines", Reason: "all lines are zero"}
	}

	var totalDebit, totalCredit float64
	for _, line := range lines {
		totalDebit += line.Debit
		totalCredit += line.Credit
	}
	totalDebit = shared.Round2(totalDebit)
	totalCredit = shared.Round2(totalCredit)
	if !shared.Balanced(totalDebit, totalCredit) {
		return JournalEntry{}, shared.DoubleEntryError{
			TotalDebit:  totalDebit,
			TotalCredit: totalCredit,
			Difference:  shared.Difference(totalDebit, totalCredit),
		}
	}

	if err := s.resolveAccounts(ctx, tx, in.BusinessID, lines); err != nil {
		return JournalEntry{}, err
	}

	next, err := tx.NextNumber(ctx, in.BusinessID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry, err := tx.InsertEntry(ctx, JournalEntry{
		BusinessID:    in.BusinessID,
		Number:        FormatNumber(next),
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		CreatedBy:     in.CreatedBy,
	})
	if err != nil {
		return JournalEntry{}, err
	}
	persisted, err := tx.InsertLines(ctx, entry, lines)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = persisted

	if s.metrics != nil {
		s.metrics.IncJournalPosted()
	}
	return entry, nil
}

// Post is a convenience wrapper that opens its own transaction around PostTx.
// Business operations with rows of their own use PostTx with their handle.
func (s *Service) Post(ctx context.Context, in PostingInput) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		entry, err = s.PostTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.notifyPosted(ctx, entry)
	return entry, nil
}

// Reverse posts a new offsetting entry for an existing journal. The original
// rows are never touched; this is the sanctioned correction path.
func (s *Service) Reverse(ctx context.Context, businessID, journalID int64, actor *int64, memo string) (JournalEntry, error) {
	original, err := s.repo.Get(ctx, businessID, journalID)
	if err != nil {
		return JournalEntry{}, err
	}
	if memo == "" {
		memo = "Reversal of " + original.Number
	}
	in := PostingInput{
		BusinessID:    businessID,
		Date:          original.Date,
		Description:   memo,
		ReferenceType: "reversal",
		ReferenceID:   uuid.New(),
		CreatedBy:     actor,
		Lines:         swapSides(original.Lines),
	}
	return s.Post(ctx, in)
}

func (s *Service) Get(ctx context.Context, businessID, id int64) (JournalEntry, error) {
	return s.repo.Get(ctx, businessID, id)
}

func (s *Service) List(ctx context.Context, businessID int64, limit, offset int) ([]JournalEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, businessID, limit, offset)
}

func (s *Service) notifyPosted(ctx context.Context, entry JournalEntry) {
	if s.logger != nil {
		s.logger.Info("journal posted",
			slog.Int64("business_id", entry.BusinessID),
			slog.String("number", entry.Number),
			slog.Int("lines", len(entry.Lines)))
	}
	if s.bumper != nil {
		if err := s.bumper.Bump(ctx, entry.BusinessID); err != nil && s.logger != nil {
			s.logger.Warn("gl bump failed", slog.Any("error", err))
		}
	}
}

// roundAndDrop rounds every amount to 2 decimals before summation and drops
// lines where both sides round to zero; no-op lines are never stored.
func roundAndDrop(lines []LineInput) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		line.Debit = shared.Round2(line.Debit)
		line.Credit = shared.Round2(line.Credit)
		if line.Debit == 0 && line.Credit == 0 {
			continue
		}
		out = append(out, line)
	}
	return out
}

// resolveAccounts turns symbolic codes into ids in place and verifies that
// every referenced id belongs to an active account of this business.
func (s *Service) resolveAccounts(ctx context.Context, tx TxStore, businessID int64, lines []LineInput) error {
	var accountCodes []string
	var ids []int64
	seenCodes := map[string]bool{}
	for _, line := range lines {
		if line.AccountID != 0 {
			ids = append(ids, line.AccountID)
			continue
		}
		if !seenCodes[line.AccountCode] {
			seenCodes[line.AccountCode] = true
			accountCodes = append(accountCodes, line.AccountCode)
		}
	}
	if len(accountCodes) > 0 {
		resolved, err := tx.ResolveAccountCodes(ctx, businessID, accountCodes)
		if err != nil {
			return err
		}
		for i := range lines {
			if lines[i].AccountID == 0 {
				lines[i].AccountID = resolved[lines[i].AccountCode]
			}
		}
	}
	if len(ids) > 0 {
		if err := tx.VerifyAccountIDs(ctx, businessID, ids); err != nil {
			return err
		}
	}
	return nil
}

func swapSides(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:   line.AccountID,
			Debit:       line.Credit,
			Credit:      line.Debit,
			Description: line.Description,
		})
	}
	return out
}
