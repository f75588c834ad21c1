package receivables

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus enumerates receivable invoice statuses.
type InvoiceStatus string

const (
	StatusIssued InvoiceStatus = "issued"
	StatusPaid   InvoiceStatus = "paid"
	StatusVoid   InvoiceStatus = "void"
)

// Invoice is a customer invoice. Issuing one posts its journal entry in the
// same transaction, so JournalID is set whenever the row exists.
type Invoice struct {
	ID           int64         `json:"id"`
	UID          uuid.UUID     `json:"uid"`
	BusinessID   int64         `json:"business_id"`
	Number       string        `json:"number"`
	CustomerName string        `json:"customer_name"`
	Subtotal     float64       `json:"subtotal"`
	TaxAmount    float64       `json:"tax_amount"`
	Total        float64       `json:"total"`
	Status       InvoiceStatus `json:"status"`
	JournalID    int64         `json:"journal_id"`
	IssuedAt     time.Time     `json:"issued_at"`
	DueAt        time.Time     `json:"due_at"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// AgingBucket summarises outstanding totals by days overdue.
type AgingBucket struct {
	Current   float64 `json:"current"`
	Bucket30  float64 `json:"bucket_30"`
	Bucket60  float64 `json:"bucket_60"`
	Bucket90  float64 `json:"bucket_90"`
	Bucket120 float64 `json:"bucket_120"`
}
