// Package messagestore persists group chat messages. Messages are
// immutable once written.
package messagestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxHistory caps ListByGroup.
const MaxHistory = 1000

// ErrEmptyContent is returned by Create for blank content.
var ErrEmptyContent = errors.New("message content is required")

type messageDoc struct {
	ID        string `bson:"_id"`
	GroupID   string `bson:"group_id"`
	UserID    string `bson:"user_id"`
	UserName  string `bson:"user_name"`
	Content   string `bson:"content"`
	CreatedAt string `bson:"created_at"`
}

func (d messageDoc) toModel() (models.Message, error) {
	created, err := isotime.Parse(d.CreatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("message %s: created_at: %w", d.ID, err)
	}
	return models.Message{
		ID:        d.ID,
		GroupID:   d.GroupID,
		UserID:    d.UserID,
		UserName:  d.UserName,
		Content:   d.Content,
		CreatedAt: created,
	}, nil
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("messages")}
}

// Create stores content as sent by sender in groupID. Membership is
// checked by the caller. Content is stored verbatim.
func (s *Store) Create(ctx context.Context, groupID string, sender *models.User, content string) (models.Message, error) {
	if content == "" {
		return models.Message{}, ErrEmptyContent
	}
	d := messageDoc{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    sender.ID,
		UserName:  sender.FullName,
		Content:   content,
		CreatedAt: isotime.Format(isotime.Now()),
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Message{}, err
	}
	return d.toModel()
}

// ListByGroup returns up to MaxHistory messages of groupID, oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(MaxHistory)
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Message{}
	for cur.Next(ctx) {
		var d messageDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		m, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}
