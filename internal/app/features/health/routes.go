package health

import "github.com/go-chi/chi/v5"

// Routes mounts the probe at the subrouter root for GET and HEAD.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
