package httpx

import (
	"errors"
	"net/http"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// RespondError maps ledger errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrAccountNotFound):
		Problem(w, http.StatusNotFound, "Account Not Found", err.Error())
	case errors.Is(err, shared.ErrJournalNotFound):
		Problem(w, http.StatusNotFound, "Journal Not Found", err.Error())
	case errors.Is(err, shared.ErrUnbalanced):
		Problem(w, http.StatusUnprocessableEntity, "Double Entry Violation", err.Error())
	case errors.Is(err, shared.ErrGuardViolation):
		Problem(w, http.StatusConflict, "Guard Violation", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		Problem(w, http.StatusConflict, "Fiscal Period Closed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
