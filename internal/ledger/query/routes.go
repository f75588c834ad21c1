package query

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entries", h.Entries)
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/accounts/{id}/balance", h.AccountBalance)
	r.Get("/accounts/code/{code}/balance", h.AccountBalanceByCode)
}
