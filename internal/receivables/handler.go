package receivables

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

func businessIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvoiceNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
		return
	}
	httpx.RespondError(w, err)
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	var req IssueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.Normalize(businessID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Issue(r.Context(), input)
	if err != nil {
		h.logger.Error("issue invoice", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.Normalize(businessID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.RegisterPayment(r.Context(), input)
	if err != nil {
		h.logger.Error("register payment", slog.Int64("invoice_id", id), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	items, err := h.service.List(r.Context(), businessID, limit, offset)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice id")
		return
	}
	inv, err := h.service.Get(r.Context(), businessID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	bucket, err := h.service.Aging(r.Context(), businessID, asOf)
	if err != nil {
		h.logger.Error("aging report", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bucket)
}
