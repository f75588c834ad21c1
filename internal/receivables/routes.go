package receivables

import "github.com/go-chi/chi/v5"

// MountRoutes registers invoice endpoints on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Issue)
	r.Get("/aging", h.Aging)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/payments", h.RegisterPayment)
}
