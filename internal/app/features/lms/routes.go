// internal/app/features/lms/routes.go
package lms

import "github.com/go-chi/chi/v5"

// Routes returns the /lms subrouter. The caller mounts it behind the
// bearer-token guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/config", h.ServeConfig)
	r.Post("/config", h.HandleUpdateConfig)
	r.Post("/sync", h.HandleSync)
	return r
}
