package journal

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

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in, err := req.Normalize()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Post(r.Context(), in)
	if err != nil {
		h.logger.Error("post journal", slog.Int64("business_id", req.BusinessID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	if err != nil || businessID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.service.List(r.Context(), businessID, limit, offset)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"journals": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	if err != nil || businessID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	entry, err := h.service.Get(r.Context(), businessID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	if err != nil || businessID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	var body struct {
		Memo  string `json:"memo,omitempty"`
		Actor *int64 `json:"actor,omitempty"`
	}
	_ = httpx.DecodeJSON(r, &body)
	entry, err := h.service.Reverse(r.Context(), businessID, id, body.Actor, body.Memo)
	if err != nil {
		h.logger.Error("reverse journal", slog.Int64("journal_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}
