// internal/app/features/assignments/routes.go
package assignments

import "github.com/go-chi/chi/v5"

// Routes returns the /assignments subrouter. The caller mounts it behind
// the bearer-token guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}/complete", h.HandleToggleComplete)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
