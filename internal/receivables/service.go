package receivables

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/codes"
	"github.com/ledgerline/ledgerline/internal/ledger/journal"
	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Poster posts journal entries through a caller-supplied transaction store.
// *journal.Service satisfies it.
type Poster interface {
	PostTx(ctx context.Context, tx journal.TxStore, in journal.PostingInput) (journal.JournalEntry, error)
}

// Binder adapts a transaction handle into a journal transaction store.
// journal.Repository satisfies it.
type Binder interface {
	BindTx(q db.DBTX) journal.TxStore
}

// Service issues and settles customer invoices. Each operation writes its
// invoice row and its journal entry inside one transaction: if the posting
// fails the invoice never exists, and vice versa.
type Service struct {
	repo   Repository
	poster Poster
	binder Binder
	logger *slog.Logger
}

func NewService(repo Repository, poster Poster, binder Binder, logger *slog.Logger) *Service {
	return &Service{repo: repo, poster: poster, binder: binder, logger: logger}
}

// Issue creates an invoice and posts debit AR / credit revenue (and tax
// payable when a tax rate applies) atomically.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Invoice, error) {
	if in.BusinessID <= 0 {
		return Invoice{}, shared.ValidationError{Field: "business_id", Reason: "required"}
	}
	if in.Subtotal <= 0 {
		return Invoice{}, shared.ValidationError{Field: "subtotal", Reason: "must be positive"}
	}
	if in.TaxRate < 0 || in.TaxRate > 1 {
		return Invoice{}, shared.ValidationError{Field: "tax_rate", Reason: "must be between 0 and 1"}
	}

	subtotal := shared.Round2(in.Subtotal)
	tax := shared.Round2(subtotal * in.TaxRate)
	total := shared.Round2(subtotal + tax)

	lines := []journal.LineInput{
		{AccountCode: mustCode(codes.AccountsReceivable), Debit: total, Description: "invoice " + in.Number},
		{AccountCode: mustCode(codes.SalesRevenue), Credit: subtotal, Description: "invoice " + in.Number},
	}
	if tax > 0 {
		lines = append(lines, journal.LineInput{
			AccountCode: mustCode(codes.SalesTaxPayable), Credit: tax, Description: "tax on " + in.Number,
		})
	}

	var inv Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, q db.DBTX) error {
		var err error
		inv, err = s.repo.Insert(ctx, q, Invoice{
			BusinessID:   in.BusinessID,
			Number:       in.Number,
			CustomerName: in.CustomerName,
			Subtotal:     subtotal,
			TaxAmount:    tax,
			Total:        total,
			Status:       StatusIssued,
			IssuedAt:     in.IssuedAt,
			DueAt:        in.DueAt,
		})
		if err != nil {
			return err
		}
		entry, err := s.poster.PostTx(ctx, s.binder.BindTx(q), journal.PostingInput{
			BusinessID:    in.BusinessID,
			Date:          in.IssuedAt,
			Description:   fmt.Sprintf("Invoice %s for %s", in.Number, in.CustomerName),
			ReferenceType: "invoice",
			ReferenceID:   inv.UID,
			CreatedBy:     in.CreatedBy,
			Lines:         lines,
		})
		if err != nil {
			return err
		}
		inv.JournalID = entry.ID
		return s.repo.SetJournal(ctx, q, inv.ID, entry.ID)
	})
	if err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice issued",
		slog.Int64("business_id", inv.BusinessID),
		slog.String("number", inv.Number),
		slog.Int64("journal_id", inv.JournalID))
	return inv, nil
}

// RegisterPayment settles an issued invoice in full and posts debit cash /
// credit AR in the same transaction that flips the status.
func (s *Service) RegisterPayment(ctx context.Context, in PaymentInput) (Invoice, error) {
	if in.Amount <= 0 {
		return Invoice{}, shared.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	inv, err := s.repo.Get(ctx, in.BusinessID, in.InvoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status != StatusIssued {
		return Invoice{}, shared.ValidationError{Field: "status", Reason: "invoice is not open"}
	}
	amount := shared.Round2(in.Amount)
	if !shared.Balanced(amount, inv.Total) {
		return Invoice{}, shared.ValidationError{Field: "amount", Reason: "partial payments are not supported"}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, q db.DBTX) error {
		if err := s.repo.MarkPaid(ctx, q, in.BusinessID, inv.ID, in.PaidAt); err != nil {
			return err
		}
		_, err := s.poster.PostTx(ctx, s.binder.BindTx(q), journal.PostingInput{
			BusinessID:    in.BusinessID,
			Date:          in.PaidAt,
			Description:   fmt.Sprintf("Payment for invoice %s", inv.Number),
			ReferenceType: "invoice_payment",
			ReferenceID:   inv.UID,
			CreatedBy:     in.CreatedBy,
			Lines: []journal.LineInput{
				{AccountCode: mustCode(codes.Cash), Debit: amount},
				{AccountCode: mustCode(codes.AccountsReceivable), Credit: amount},
			},
		})
		return err
	})
	if err != nil {
		return Invoice{}, err
	}
	inv.Status = StatusPaid
	paidAt := in.PaidAt
	inv.PaidAt = &paidAt
	return inv, nil
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Invoice, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List returns invoices, newest first.
func (s *Service) List(ctx context.Context, businessID int64, limit, offset int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, businessID, limit, offset)
}

// Aging groups outstanding invoice totals by days overdue as of a date.
func (s *Service) Aging(ctx context.Context, businessID int64, asOf time.Time) (AgingBucket, error) {
	invoices, err := s.repo.ListOutstanding(ctx, businessID)
	if err != nil {
		return AgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	var bucket AgingBucket
	for _, inv := range invoices {
		days := int(asOf.Sub(inv.DueAt).Hours() / 24)
		switch {
		case days <= 0:
			bucket.Current += inv.Total
		case days <= 30:
			bucket.Bucket30 += inv.Total
		case days <= 60:
			bucket.Bucket60 += inv.Total
		case days <= 90:
			bucket.Bucket90 += inv.Total
		default:
			bucket.Bucket120 += inv.Total
		}
	}
	bucket.Current = shared.Round2(bucket.Current)
	bucket.Bucket30 = shared.Round2(bucket.Bucket30)
	bucket.Bucket60 = shared.Round2(bucket.Bucket60)
	bucket.Bucket90 = shared.Round2(bucket.Bucket90)
	bucket.Bucket120 = shared.Round2(bucket.Bucket120)
	return bucket, nil
}

// mustCode resolves a symbolic account key to its default chart code. The
// keys passed here are compile-time constants from the codes package.
func mustCode(key string) string {
	code, ok := codes.Resolve(key)
	if !ok {
		panic("receivables: unknown account key " + key)
	}
	return code
}
