// internal/app/store/audit/store.go
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryGroup = "group"
)

// Auth event types
const (
	EventRegistered            = "registered"
	EventLoginSuccess          = "login_success"
	EventLoginFailedCredential = "login_failed_credentials"
	EventLoginFailedRateLimit  = "login_failed_rate_limit"
	EventExternalLogin         = "external_login"
)

// Group event types
const (
	EventGroupCreated = "group_created"
	EventMemberJoined = "member_joined"
)

// DefaultLimit bounds Query when the filter sets none.
const DefaultLimit = 100

// Event is one audit record.
type Event struct {
	ID        string    `bson:"-"`
	Timestamp time.Time `bson:"-"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who. ActorID is the caller; UserID the account the event is about.
	UserID  string `bson:"user_id,omitempty"`
	ActorID string `bson:"actor_id,omitempty"`
	GroupID string `bson:"group_id,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

type eventDoc struct {
	ID        string `bson:"_id"`
	Timestamp string `bson:"timestamp"`
	Event     `bson:",inline"`
}

func (d eventDoc) toEvent() (Event, error) {
	ts, err := isotime.Parse(d.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("audit event %s: timestamp: %w", d.ID, err)
	}
	e := d.Event
	e.ID = d.ID
	e.Timestamp = ts
	return e, nil
}

// QueryFilter narrows Query. Zero fields match everything.
type QueryFilter struct {
	UserID    string
	GroupID   string
	Category  string
	EventType string
	Limit     int64
}

func (f QueryFilter) bson() bson.M {
	q := bson.M{}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.GroupID != "" {
		q["group_id"] = f.GroupID
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	return q
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event. ID and Timestamp are filled in when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = isotime.Now()
	}
	_, err := s.c.InsertOne(ctx, eventDoc{
		ID:        event.ID,
		Timestamp: isotime.Format(event.Timestamp),
		Event:     event,
	})
	return err
}

// Query returns events matching filter, most recent first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Event{}
	for cur.Next(ctx) {
		var d eventDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		e, err := d.toEvent()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, cur.Err()
}

// Count returns the number of events matching filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// GetByUser retrieves recent audit events about userID.
func (s *Store) GetByUser(ctx context.Context, userID string, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{UserID: userID, Limit: limit})
}

// DeleteBefore removes events recorded before cutoff and returns how many
// were removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": isotime.Format(cutoff)}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
