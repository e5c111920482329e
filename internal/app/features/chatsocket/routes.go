// internal/app/features/chatsocket/routes.go
package chatsocket

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted at /ws.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/groups/{group_id}", h.Serve)
	return r
}
