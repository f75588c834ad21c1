package accounts

import (
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	items, err := h.service.List(r.Context(), businessID)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": items})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	inserted, err := h.service.Seed(r.Context(), businessID)
	if err != nil {
		h.logger.Error("seed chart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inserted": inserted})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var req UpdateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Update(r.Context(), businessID, id, req)
	if err != nil {
		h.logger.Error("update account", slog.Int64("account_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	if err := h.service.Delete(r.Context(), businessID, id); err != nil {
		h.logger.Error("delete account", slog.Int64("account_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
