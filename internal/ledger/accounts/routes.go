package accounts

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/seed", h.Seed)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
