// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns the /groups subrouter. The caller mounts it behind the
// bearer-token guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/join", h.HandleJoin)
	r.Get("/{id}/messages", h.ServeMessages)
	r.Post("/{id}/messages", h.HandleCreateMessage)
	return r
}
