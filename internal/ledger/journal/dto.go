package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// LineInput describes one requested ledger line. Exactly one of AccountID or
// AccountCode identifies the account; codes are resolved by the engine.
type LineInput struct {
	AccountID   int64   `json:"account_id,omitempty"`
	AccountCode string  `json:"account_code,omitempty"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Description string  `json:"description,omitempty"`
}

// PostingInput is the canonical posting shape. The engine only ever sees this
// form; legacy flat requests are converted by PostRequest.Normalize.
type PostingInput struct {
	BusinessID    int64
	Date          time.Time
	Description   string
	ReferenceType string
	ReferenceID   uuid.UUID
	CreatedBy     *int64
	Lines         []LineInput
}

// Validate ensures posting input meets minimum criteria. Balance is checked
// separately after rounding.
func (in PostingInput) Validate() error {
	if in.BusinessID <= 0 {
		return shared.ValidationError{Field: "business_id", Reason: "required"}
	}
	if in.Date.IsZero() {
		return shared.ValidationError{Field: "date", Reason: "required"}
	}
	if len(in.Lines) == 0 {
		return shared.ValidationError{Field: "lines", Reason: "at least one line required"}
	}
	for idx, line := range in.Lines {
		if line.AccountID == 0 && line.AccountCode == "" {
			return shared.ValidationError{Field: fmt.Sprintf("lines[%d]", idx), Reason: "account id or code required"}
		}
		if line.Debit < 0 || line.Credit < 0 {
			return shared.ValidationError{Field: fmt.Sprintf("lines[%d]", idx), Reason: "negative amount"}
		}
		if line.Debit > 0 && line.Credit > 0 {
			return shared.ValidationError{Field: fmt.Sprintf("lines[%d]", idx), Reason: "line cannot carry both debit and credit"}
		}
	}
	return nil
}

// PostRequest is the wire shape accepted from callers. It carries either a
// batch of lines or the legacy flat single-amount form.
type PostRequest struct {
	BusinessID    int64       `json:"business_id" validate:"required,gt=0"`
	Date          string      `json:"date" validate:"required"`
	Description   string      `json:"description,omitempty" validate:"omitempty,max=500"`
	ReferenceType string      `json:"reference_type,omitempty" validate:"omitempty,max=50"`
	ReferenceID   string      `json:"reference_id,omitempty" validate:"omitempty,uuid"`
	CreatedBy     *int64      `json:"created_by,omitempty"`
	Lines         []LineInput `json:"lines,omitempty"`

	// Legacy flat shape: one debit account, one credit account, one amount.
	DebitAccount  string  `json:"debit_account,omitempty"`
	CreditAccount string  `json:"credit_account,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
}

// Normalize converts either accepted shape into the canonical PostingInput.
func (r PostRequest) Normalize() (PostingInput, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return PostingInput{}, shared.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	var refID uuid.UUID
	if r.ReferenceID != "" {
		refID, err = uuid.Parse(r.ReferenceID)
		if err != nil {
			return PostingInput{}, shared.ValidationError{Field: "reference_id", Reason: "invalid uuid"}
		}
	}
	in := PostingInput{
		BusinessID:    r.BusinessID,
		Date:          date,
		Description:   r.Description,
		ReferenceType: r.ReferenceType,
		ReferenceID:   refID,
		CreatedBy:     r.CreatedBy,
		Lines:         r.Lines,
	}
	legacy := r.DebitAccount != "" || r.CreditAccount != "" || r.Amount != 0
	switch {
	case len(r.Lines) > 0 && legacy:
		return PostingInput{}, shared.ValidationError{Field: "lines", Reason: "provide lines or the flat shape, not both"}
	case len(r.Lines) == 0 && !legacy:
		return PostingInput{}, shared.ValidationError{Field: "lines", Reason: "at least one line required"}
	case legacy:
		if r.DebitAccount == "" || r.CreditAccount == "" {
			return PostingInput{}, shared.ValidationError{Field: "debit_account", Reason: "flat shape needs both debit and credit accounts"}
		}
		in.Lines = []LineInput{
			{AccountCode: r.DebitAccount, Debit: r.Amount},
			{AccountCode: r.CreditAccount, Credit: r.Amount},
		}
	}
	return in, nil
}
