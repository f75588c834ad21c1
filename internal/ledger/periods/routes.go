package periods

import "github.com/go-chi/chi/v5"

// MountRoutes registers fiscal period endpoints on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/reopen", h.Reopen)
	r.Post("/{id}/lock", h.Lock)
}
