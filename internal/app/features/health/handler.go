// Package health serves the liveness probe used by load balancers and the
// deploy scripts. The probe is healthy only while MongoDB answers a ping.
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/respond"
	"github.com/dalemusser/studyhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Handler struct {
	DB  Pinger
	Log *zap.Logger
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve answers 200 {"status":"ok","database":"connected"} or, when the
// primary cannot be reached within timeouts.Ping, 503 with the ping error.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	err := h.DB.Ping(ctx, readpref.Primary())
	if err == nil {
		respond.JSON(w, http.StatusOK, status{Status: "ok", Database: "connected"})
		return
	}

	h.Log.Error("health: database ping failed", zap.Error(err))
	respond.JSON(w, http.StatusServiceUnavailable, status{
		Status:   "error",
		Database: "disconnected",
		Message:  "Database unavailable",
		Error:    err.Error(),
	})
}
