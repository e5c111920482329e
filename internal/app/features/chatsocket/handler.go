// internal/app/features/chatsocket/handler.go
package chatsocket

import (
	"net/http"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades /ws/groups/{group_id} to a websocket and keeps it
// registered with the Hub until the client goes away. The socket is
// push-only: anything the client sends is read and discarded, and chat
// messages arrive through the REST message endpoint.
//
// No credentials are checked at subscribe time.
type Handler struct {
	Hub          *realtime.Hub
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
	ReadLimit    int64
	Log          *zap.Logger
}

// NewHandler builds a Handler. Non-positive limits fall back to the
// realtime package defaults.
func NewHandler(hub *realtime.Hub, writeTimeout time.Duration, readLimit int64, logger *zap.Logger) *Handler {
	return &Handler{
		Hub: hub,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may connect, as with the API's CORS policy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		WriteTimeout: writeTimeout,
		ReadLimit:    readLimit,
		Log:          logger,
	}
}

// Serve handles GET /ws/groups/{group_id}.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "group_id")

	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Log.Debug("chat socket: upgrade failed", zap.String("group_id", groupID), zap.Error(err))
		return
	}
	conn := realtime.NewWSConn(ws, h.WriteTimeout)

	if err := h.Hub.Subscribe(conn, groupID); err != nil {
		h.Log.Debug("chat socket: subscribe refused", zap.String("group_id", groupID), zap.Error(err))
		_ = conn.Close()
		return
	}
	h.Log.Debug("chat socket: connected", zap.String("group_id", groupID))

	err = conn.ReadUntilClosed(h.ReadLimit)

	h.Hub.Unsubscribe(conn, groupID)
	_ = conn.Close()
	h.Log.Debug("chat socket: disconnected", zap.String("group_id", groupID), zap.Error(err))
}
