// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /auth subrouter. Only /me requires a token.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/google", h.HandleGoogle)
	r.Post("/byu-netid", h.HandleBYUNetID)
	r.With(guard.Require).Get("/me", h.ServeMe)
	return r
}
