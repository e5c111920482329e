// internal/app/features/lms/handler.go
package lms

import (
	"context"
	"errors"
	"net/http"

	lmsconfigstore "github.com/dalemusser/studyhub/internal/app/store/lmsconfigs"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	lmssource "github.com/dalemusser/studyhub/internal/app/system/lms"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const detailNotConfigured = "Please configure your LMS API keys first"

// Handler serves per-user LMS credentials and the sync placeholder.
type Handler struct {
	Configs *lmsconfigstore.Store
	Sources []lmssource.Source
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Configs: lmsconfigstore.New(db),
		Sources: lmssource.Sources(),
		Log:     logger,
	}
}

// updateRequest carries only the fields the client sent; absent or null
// fields keep their stored values.
type updateRequest struct {
	LearningSuiteAPIKey *string `json:"learning_suite_api_key"`
	CanvasAPIKey        *string `json:"canvas_api_key"`
	CanvasDomain        *string `json:"canvas_domain"`
}

type syncResponse struct {
	Message                 string `json:"message"`
	LearningSuiteConfigured bool   `json:"learning_suite_configured"`
	CanvasConfigured        bool   `json:"canvas_configured"`
}

// ServeConfig handles GET /lms/config. A user who never saved a
// configuration gets empty strings.
func (h *Handler) ServeConfig(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cfg, err := h.Configs.Get(ctx, u.ID)
	if errors.Is(err, lmsconfigstore.ErrNotFound) {
		cfg = models.LMSConfig{UserID: u.ID}
		err = nil
	}
	if err != nil {
		h.Log.Error("load lms config failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, cfg)
}

// HandleUpdateConfig handles POST /lms/config.
func (h *Handler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Configs.Upsert(ctx, u.ID, lmsconfigstore.Update{
		LearningSuiteAPIKey: req.LearningSuiteAPIKey,
		CanvasAPIKey:        req.CanvasAPIKey,
		CanvasDomain:        req.CanvasDomain,
	})
	if err != nil {
		h.Log.Error("save lms config failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.Message(w, "LMS configuration updated")
}

// HandleSync handles POST /lms/sync. It reports which sources have
// credentials and makes no external calls.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cfg, err := h.Configs.Get(ctx, u.ID)
	if errors.Is(err, lmsconfigstore.ErrNotFound) {
		respond.Error(w, apierr.BadRequest(detailNotConfigured))
		return
	}
	if err != nil {
		h.Log.Error("load lms config failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}

	ready := lmssource.Readiness(cfg, h.Sources...)
	respond.JSON(w, http.StatusOK, syncResponse{
		Message:                 lmssource.SyncReadyMessage,
		LearningSuiteConfigured: ready[models.SourceLearningSuite],
		CanvasConfigured:        ready[models.SourceCanvas],
	})
}
