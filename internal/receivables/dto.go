package receivables

import (
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// IssueRequest is the wire payload for issuing an invoice.
type IssueRequest struct {
	Number       string  `json:"number" validate:"required"`
	CustomerName string  `json:"customer_name" validate:"required"`
	Subtotal     float64 `json:"subtotal" validate:"required,gt=0"`
	TaxRate      float64 `json:"tax_rate" validate:"gte=0,lte=1"`
	IssuedAt     string  `json:"issued_at" validate:"required"`
	DueAt        string  `json:"due_at" validate:"required"`
	CreatedBy    *int64  `json:"created_by,omitempty"`
}

// IssueInput is the normalized issue shape.
type IssueInput struct {
	BusinessID   int64
	Number       string
	CustomerName string
	Subtotal     float64
	TaxRate      float64
	IssuedAt     time.Time
	DueAt        time.Time
	CreatedBy    *int64
}

// Normalize parses the wire dates.
func (r IssueRequest) Normalize(businessID int64) (IssueInput, error) {
	issuedAt, err := time.Parse("2006-01-02", r.IssuedAt)
	if err != nil {
		return IssueInput{}, shared.ValidationError{Field: "issued_at", Reason: "must be YYYY-MM-DD"}
	}
	dueAt, err := time.Parse("2006-01-02", r.DueAt)
	if err != nil {
		return IssueInput{}, shared.ValidationError{Field: "due_at", Reason: "must be YYYY-MM-DD"}
	}
	if dueAt.Before(issuedAt) {
		return IssueInput{}, shared.ValidationError{Field: "due_at", Reason: "must not precede issued_at"}
	}
	return IssueInput{
		BusinessID:   businessID,
		Number:       r.Number,
		CustomerName: r.CustomerName,
		Subtotal:     r.Subtotal,
		TaxRate:      r.TaxRate,
		IssuedAt:     issuedAt,
		DueAt:        dueAt,
		CreatedBy:    r.CreatedBy,
	}, nil
}

// PaymentRequest is the wire payload for registering a payment.
type PaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	PaidAt    string  `json:"paid_at" validate:"required"`
	CreatedBy *int64  `json:"created_by,omitempty"`
}

// PaymentInput is the normalized payment shape.
type PaymentInput struct {
	BusinessID int64
	InvoiceID  int64
	Amount     float64
	PaidAt     time.Time
	CreatedBy  *int64
}

// Normalize parses the wire date.
func (r PaymentRequest) Normalize(businessID, invoiceID int64) (PaymentInput, error) {
	paidAt, err := time.Parse("2006-01-02", r.PaidAt)
	if err != nil {
		return PaymentInput{}, shared.ValidationError{Field: "paid_at", Reason: "must be YYYY-MM-DD"}
	}
	return PaymentInput{
		BusinessID: businessID,
		InvoiceID:  invoiceID,
		Amount:     r.Amount,
		PaidAt:     paidAt,
		CreatedBy:  r.CreatedBy,
	}, nil
}
