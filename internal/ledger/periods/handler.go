package periods

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

// CreatePeriodRequest is the wire payload for opening a fiscal period.
type CreatePeriodRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

func businessIDFromRequest(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("business_id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoPeriod) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "fiscal period not found")
		return
	}
	httpx.RespondError(w, err)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	items, err := h.service.List(r.Context(), businessID)
	if err != nil {
		h.logger.Error("list periods", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": items})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	var req CreatePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end_date must be YYYY-MM-DD")
		return
	}
	period, err := h.service.Create(r.Context(), CreateInput{
		BusinessID: businessID,
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		h.logger.Error("create period", slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(businessID, id int64) (Period, error)) {
	businessID, ok := businessIDFromRequest(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "business_id is required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid period id")
		return
	}
	period, err := fn(businessID, id)
	if err != nil {
		h.logger.Error("period transition", slog.Int64("period_id", id), slog.Any("error", err))
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(businessID, id int64) (Period, error) {
		return h.service.Close(r.Context(), businessID, id, actorFromRequest(r))
	})
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(businessID, id int64) (Period, error) {
		return h.service.Reopen(r.Context(), businessID, id)
	})
}

func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(businessID, id int64) (Period, error) {
		return h.service.Lock(r.Context(), businessID, id, actorFromRequest(r))
	})
}

func actorFromRequest(r *http.Request) *int64 {
	raw := r.URL.Query().Get("actor_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
