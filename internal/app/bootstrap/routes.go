// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	assignmentsfeature "github.com/dalemusser/studyhub/internal/app/features/assignments"
	chatsocketfeature "github.com/dalemusser/studyhub/internal/app/features/chatsocket"
	groupsfeature "github.com/dalemusser/studyhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studyhub/internal/app/features/health"
	lmsfeature "github.com/dalemusser/studyhub/internal/app/features/lms"
	loginfeature "github.com/dalemusser/studyhub/internal/app/features/login"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Layout:
//   - /health, /metrics: operational endpoints
//   - /ws/groups/{group_id}: realtime chat sockets (no token required)
//   - /api/auth/*: registration and sign-in; only /api/auth/me needs a token
//   - /api/assignments, /api/lms, /api/groups: bearer-token guarded
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	guard := auth.NewGuard(deps.Tokens, userstore.NewFetcher(deps.MongoDatabase), logger)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, apierr.NotFound("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Realtime subscriber and delivery metrics
	r.Handle("/metrics", deps.Hub.Metrics().Handler())

	chatHandler := chatsocketfeature.NewHandler(deps.Hub, appCfg.WSWriteTimeout, appCfg.WSReadLimit, logger)
	r.Mount("/ws", chatsocketfeature.Routes(chatHandler))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, deps.Tokens, deps.LoginLimiter, deps.Audit, logger)
	assignmentsHandler := assignmentsfeature.NewHandler(deps.MongoDatabase, logger)
	lmsHandler := lmsfeature.NewHandler(deps.MongoDatabase, logger)
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, deps.Hub, deps.Audit, logger)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", loginfeature.Routes(loginHandler, guard))

		api.Group(func(pr chi.Router) {
			pr.Use(guard.Require)
			pr.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler))
			pr.Mount("/lms", lmsfeature.Routes(lmsHandler))
			pr.Mount("/groups", groupsfeature.Routes(groupsHandler))
		})
	})

	return r, nil
}
