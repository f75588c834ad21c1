package query

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger}
}

func parseBusinessID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	return id, err == nil && id > 0
}

func parseDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *Handler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseBusinessID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	asOf, err := parseDate(r, "as_of")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of expects YYYY-MM-DD")
		return
	}
	balance, err := h.service.AccountBalance(r.Context(), businessID, accountID, asOf)
	if err != nil {
		h.logger.Error("account balance", slog.Int64("account_id", accountID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) AccountBalanceByCode(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseBusinessID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	code := chi.URLParam(r, "code")
	balance, err := h.service.AccountBalanceByCode(r.Context(), businessID, code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseBusinessID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	start, err := parseDate(r, "start_date")
	if err != nil || start == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date expects YYYY-MM-DD")
		return
	}
	end, err := parseDate(r, "end_date")
	if err != nil || end == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date expects YYYY-MM-DD")
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), businessID, *start, *end)
	if err != nil {
		h.logger.Error("trial balance", slog.Int64("business_id", businessID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	businessID, ok := parseBusinessID(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	var f EntriesFilter
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account_id")
			return
		}
		f.AccountID = &id
	}
	var err error
	if f.StartDate, err = parseDate(r, "start_date"); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date expects YYYY-MM-DD")
		return
	}
	if f.EndDate, err = parseDate(r, "end_date"); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date expects YYYY-MM-DD")
		return
	}
	f.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	f.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.service.Entries(r.Context(), businessID, f)
	if err != nil {
		h.logger.Error("gl entries", slog.Int64("business_id", businessID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}
