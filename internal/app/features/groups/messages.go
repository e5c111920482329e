// internal/app/features/groups/messages.go
package groups

import (
	"context"
	"errors"
	"net/http"

	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type messageRequest struct {
	Content string `json:"content" validate:"required"`
}

// ServeMessages handles GET /groups/{id}/messages: the group's history,
// oldest first. Members only.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	groupID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireMember(ctx, w, groupID, u.ID) {
		return
	}
	list, err := h.Messages.ListByGroup(ctx, groupID)
	if err != nil {
		h.Log.Error("list messages failed", zap.String("group_id", groupID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreateMessage handles POST /groups/{id}/messages. After the
// message is stored it is broadcast to the group's live connections;
// delivery failures never change the response.
func (h *Handler) HandleCreateMessage(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	groupID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !h.requireMember(ctx, w, groupID, u.ID) {
		return
	}
	var req messageRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	m, err := h.Messages.Create(ctx, groupID, u, req.Content)
	if errors.Is(err, messagestore.ErrEmptyContent) {
		respond.Error(w, apierr.BadRequest("content is required."))
		return
	}
	if err != nil {
		h.Log.Error("create message failed",
			zap.String("group_id", groupID), zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}

	if h.Hub != nil {
		rep := h.Hub.Broadcast(groupID, m)
		h.Log.Debug("message broadcast",
			zap.String("group_id", groupID),
			zap.Int("delivered", rep.Delivered),
			zap.Int("failed", rep.Failed))
	}
	respond.JSON(w, http.StatusOK, m)
}
