// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auditlog"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/realtime"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	detailGroupNotFound = "Group not found"
	detailNotMember     = "Not a member of this group"
)

// Handler serves study groups and their chat history. New messages are
// pushed to the group's live connections through Hub.
type Handler struct {
	Groups   *groupstore.Store
	Messages *messagestore.Store
	Hub      *realtime.Hub
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, hub *realtime.Hub, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:   groupstore.New(db),
		Messages: messagestore.New(db),
		Hub:      hub,
		Audit:    audit,
		Log:      logger,
	}
}

type createRequest struct {
	Name        string `json:"name" validate:"nonblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// ServeList handles GET /groups: the caller's groups, oldest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.ListForUser(ctx, u.ID)
	if err != nil {
		h.Log.Error("list groups failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /groups. The caller becomes the first member.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create group")
	defer cancel()

	g, err := h.Groups.Create(ctx, u.ID, req.Name, req.Description)
	if errors.Is(err, groupstore.ErrNameRequired) {
		respond.Error(w, apierr.BadRequest("name is required."))
		return
	}
	if err != nil {
		h.Log.Error("create group failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	h.Log.Info("group created", zap.String("group_id", g.ID), zap.String("user_id", u.ID))
	h.Audit.GroupCreated(ctx, r, u.ID, g.ID, g.Name)
	respond.JSON(w, http.StatusOK, g)
}

// HandleJoin handles POST /groups/{id}/join. Joining again is not an error.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	groupID := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "join group")
	defer cancel()

	already, err := h.Groups.Join(ctx, groupID, u.ID)
	if errors.Is(err, groupstore.ErrNotFound) {
		respond.Error(w, apierr.NotFound(detailGroupNotFound))
		return
	}
	if err != nil {
		h.Log.Error("join group failed",
			zap.String("group_id", groupID), zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	if already {
		respond.Message(w, "Already a member")
		return
	}
	h.Audit.MemberJoined(ctx, r, u.ID, groupID)
	respond.Message(w, "Joined group successfully")
}

// requireMember is the membership gate. It writes the failure response
// and returns false when the caller may not touch the group.
func (h *Handler) requireMember(ctx context.Context, w http.ResponseWriter, groupID, userID string) bool {
	ok, err := h.Groups.IsMember(ctx, groupID, userID)
	if err != nil {
		h.Log.Error("membership check failed",
			zap.String("group_id", groupID), zap.String("user_id", userID), zap.Error(err))
		respond.Error(w, err)
		return false
	}
	if !ok {
		respond.Error(w, apierr.Forbidden(detailNotMember))
		return false
	}
	return true
}
