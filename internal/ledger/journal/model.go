package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NumberPrefix precedes every journal number. Numbers are per business,
// zero padded, strictly increasing, and never reused.
const NumberPrefix = "JE-"

// FormatNumber renders a sequence value as a journal number, e.g. JE-000042.
func FormatNumber(n int64) string {
	return fmt.Sprintf("%s%06d", NumberPrefix, n)
}

// JournalEntry is a dated, balanced group of ledger lines posted together.
// Entries are immutable once created; corrections are new offsetting entries.
type JournalEntry struct {
	ID            int64
	BusinessID    int64
	Number        string
	Date          time.Time
	Description   string
	ReferenceType string
	ReferenceID   uuid.UUID
	CreatedBy     *int64
	CreatedAt     time.Time
	Lines         []Line
}

// Line stores one debit or credit amount against an account. The date,
// description and reference are denormalized from the owning entry so the
// ledger can be filtered without a join.
type Line struct {
	ID            int64
	BusinessID    int64
	JournalID     int64
	Date          time.Time
	Description   string
	AccountID     int64
	Debit         float64
	Credit        float64
	ReferenceType string
	ReferenceID   uuid.UUID
	CreatedAt     time.Time
}
