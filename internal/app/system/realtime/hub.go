// Package realtime keeps the in-memory registry of live chat connections
// per group and fans new messages out to them.
//
// The Hub is notification-only: it holds no message history, so a
// connection that subscribes after a message was sent never sees it.
// Clients fetch history through the messages endpoint.
package realtime

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("realtime: hub closed")

// Conn is one live subscriber. Implementations must make WriteJSON safe
// for concurrent callers.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// DeliveryPolicy names how Broadcast treats a failed write.
type DeliveryPolicy int

const (
	// BestEffort attempts each subscriber once. A failed write is counted
	// and logged, never retried, and never reported to the caller as an error.
	BestEffort DeliveryPolicy = iota
)

func (p DeliveryPolicy) String() string {
	switch p {
	case BestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// DeliveryReport summarises one Broadcast.
type DeliveryReport struct {
	GroupID   string
	Attempted int
	Delivered int
	Failed    int
}

// Hub maps group ids to their subscribed connections. A connection belongs
// to at most one group at a time. It is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[Conn]struct{}
	groupOf map[Conn]string
	closed  bool

	policy  DeliveryPolicy
	log     *zap.Logger
	metrics *Metrics
}

// NewHub returns an empty Hub with its own metrics registry.
func NewHub(logger *zap.Logger, policy DeliveryPolicy) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		groups:  make(map[string]map[Conn]struct{}),
		groupOf: make(map[Conn]string),
		policy:  policy,
		log:     logger,
		metrics: NewMetrics(),
	}
}

// Policy reports the delivery policy the Hub was built with.
func (h *Hub) Policy() DeliveryPolicy { return h.policy }

// Metrics exposes the Hub's Prometheus collectors.
func (h *Hub) Metrics() *Metrics { return h.metrics }

// Subscribe registers c under groupID. A connection already registered
// under another group is moved.
func (h *Hub) Subscribe(c Conn, groupID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	if prev, ok := h.groupOf[c]; ok {
		if prev == groupID {
			return nil
		}
		h.removeLocked(c, prev)
	}
	set, ok := h.groups[groupID]
	if !ok {
		set = make(map[Conn]struct{})
		h.groups[groupID] = set
	}
	set[c] = struct{}{}
	h.groupOf[c] = groupID
	h.metrics.subscribers.Inc()
	return nil
}

// Unsubscribe removes c from groupID. It is a no-op when c is not
// registered there.
func (h *Hub) Unsubscribe(c Conn, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.groupOf[c] != groupID {
		return
	}
	h.removeLocked(c, groupID)
}

func (h *Hub) removeLocked(c Conn, groupID string) {
	set, ok := h.groups[groupID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.groups, groupID)
	}
	delete(h.groupOf, c)
	h.metrics.subscribers.Dec()
}

// Count returns the number of connections subscribed to groupID.
func (h *Hub) Count(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// Broadcast writes payload to every connection subscribed to groupID when
// the call starts. Writes happen outside the registry lock, so a slow
// subscriber does not block Subscribe or Unsubscribe.
func (h *Hub) Broadcast(groupID string, payload any) DeliveryReport {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.groups[groupID]))
	for c := range h.groups[groupID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	rep := DeliveryReport{GroupID: groupID, Attempted: len(targets)}
	for _, c := range targets {
		if err := c.WriteJSON(payload); err != nil {
			rep.Failed++
			h.metrics.deliveries.WithLabelValues(resultFailed).Inc()
			h.log.Debug("realtime: delivery failed",
				zap.String("group_id", groupID),
				zap.Stringer("policy", h.policy),
				zap.Error(err))
			continue
		}
		rep.Delivered++
		h.metrics.deliveries.WithLabelValues(resultDelivered).Inc()
	}
	return rep
}

// Close closes every registered connection and rejects later subscribes.
// Calling Close more than once is safe.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conns := make([]Conn, 0, len(h.groupOf))
	for c := range h.groupOf {
		conns = append(conns, c)
	}
	h.groups = make(map[string]map[Conn]struct{})
	h.groupOf = make(map[Conn]string)
	h.metrics.subscribers.Set(0)
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Close(); err != nil {
			h.log.Debug("realtime: close connection", zap.Error(err))
		}
	}
	h.log.Info("realtime hub closed", zap.Int("connections", len(conns)))
	return nil
}
