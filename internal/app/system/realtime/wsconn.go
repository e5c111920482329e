package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single frame write to a subscriber.
const DefaultWriteTimeout = 10 * time.Second

// DefaultReadLimit caps inbound frames; clients are not expected to send
// anything meaningful on the chat socket.
const DefaultReadLimit = 4096

// WSConn adapts a gorilla websocket connection to Conn.
type WSConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWSConn wraps ws. A non-positive writeTimeout uses DefaultWriteTimeout.
func NewWSConn(ws *websocket.Conn, writeTimeout time.Duration) *WSConn {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &WSConn{ws: ws, writeTimeout: writeTimeout}
}

// WriteJSON sends v as a single text frame. Concurrent calls are serialized.
func (c *WSConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

// ReadUntilClosed discards inbound frames until the peer disconnects or a
// read fails, and returns that error.
func (c *WSConn) ReadUntilClosed(limit int64) error {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	c.ws.SetReadLimit(limit)
	for {
		if _, _, err := c.ws.NextReader(); err != nil {
			return err
		}
	}
}

// Close sends a normal-closure frame and closes the socket. Safe to call
// more than once.
func (c *WSConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.ws.Close()
}
