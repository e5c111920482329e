// internal/app/features/assignments/handler.go
package assignments

import (
	"context"
	"errors"
	"net/http"

	assignmentstore "github.com/dalemusser/studyhub/internal/app/store/assignments"
	"github.com/dalemusser/studyhub/internal/app/system/apierr"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const detailNotFound = "Assignment not found"

// Handler serves the signed-in user's assignment list. Every operation is
// scoped to the caller; another user's assignment looks the same as a
// missing one.
type Handler struct {
	Assignments *assignmentstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Assignments: assignmentstore.New(db),
		Log:         logger,
	}
}

type createRequest struct {
	Title       string `json:"title" validate:"nonblank"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	CourseName  string `json:"course_name"`
}

const detailBadDueDate = "due_date must be an ISO-8601 date-time such as 2025-03-01T17:00 or 2025-03-01T17:00:00Z."

// ServeList handles GET /assignments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Assignments.ListForUser(ctx, u.ID)
	if err != nil {
		h.Log.Error("list assignments failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /assignments. New assignments are manual and
// incomplete. due_date may omit its offset, as browser datetime-local
// values do; such values are taken as UTC.
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
	due, err := isotime.ParseLoose(req.DueDate)
	if err != nil {
		respond.Error(w, apierr.BadRequest(detailBadDueDate))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Assignments.Create(ctx, u.ID, assignmentstore.NewAssignment{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		CourseName:  req.CourseName,
		Source:      models.SourceManual,
	})
	if errors.Is(err, assignmentstore.ErrTitleRequired) {
		respond.Error(w, apierr.BadRequest("title is required."))
		return
	}
	if err != nil {
		h.Log.Error("create assignment failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

// HandleToggleComplete handles PATCH /assignments/{id}/complete.
//
// Response: { "completed": bool } with the new value.
func (h *Handler) HandleToggleComplete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	completed, err := h.Assignments.ToggleComplete(ctx, id, u.ID)
	if errors.Is(err, assignmentstore.ErrNotFound) {
		respond.Error(w, apierr.NotFound(detailNotFound))
		return
	}
	if err != nil {
		h.Log.Error("toggle assignment failed",
			zap.String("user_id", u.ID), zap.String("assignment_id", id), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

// HandleDelete handles DELETE /assignments/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, apierr.Unauthenticated(auth.CredentialsDetail))
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Assignments.Delete(ctx, id, u.ID)
	if errors.Is(err, assignmentstore.ErrNotFound) {
		respond.Error(w, apierr.NotFound(detailNotFound))
		return
	}
	if err != nil {
		h.Log.Error("delete assignment failed",
			zap.String("user_id", u.ID), zap.String("assignment_id", id), zap.Error(err))
		respond.Error(w, err)
		return
	}
	respond.Message(w, "Assignment deleted")
}
