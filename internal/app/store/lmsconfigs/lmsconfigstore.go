// Package lmsconfigstore keeps each user's learning-management-system
// credentials, one document per user.
package lmsconfigstore

import (
	"context"
	"errors"

	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when the user has never saved a configuration.
var ErrNotFound = errors.New("lms configuration not found")

type configDoc struct {
	ID                  string `bson:"_id"`
	UserID              string `bson:"user_id"`
	LearningSuiteAPIKey string `bson:"learning_suite_api_key,omitempty"`
	CanvasAPIKey        string `bson:"canvas_api_key,omitempty"`
	CanvasDomain        string `bson:"canvas_domain,omitempty"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lms_configs")}
}

// Get returns userID's configuration or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (models.LMSConfig, error) {
	var d configDoc
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LMSConfig{}, ErrNotFound
		}
		return models.LMSConfig{}, err
	}
	return models.LMSConfig{
		UserID:              d.UserID,
		LearningSuiteAPIKey: d.LearningSuiteAPIKey,
		CanvasAPIKey:        d.CanvasAPIKey,
		CanvasDomain:        d.CanvasDomain,
	}, nil
}

// Update lists the fields to change. A nil field keeps its stored value;
// a pointer to "" clears it.
type Update struct {
	LearningSuiteAPIKey *string
	CanvasAPIKey        *string
	CanvasDomain        *string
}

// Upsert applies upd to userID's configuration, creating it if needed.
func (s *Store) Upsert(ctx context.Context, userID string, upd Update) error {
	set := bson.M{"user_id": userID}
	if upd.LearningSuiteAPIKey != nil {
		set["learning_suite_api_key"] = *upd.LearningSuiteAPIKey
	}
	if upd.CanvasAPIKey != nil {
		set["canvas_api_key"] = *upd.CanvasAPIKey
	}
	if upd.CanvasDomain != nil {
		set["canvas_domain"] = *upd.CanvasDomain
	}
	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"_id": userID}}
	opts := options.Update().SetUpsert(true)

	_, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil && wafflemongo.IsDup(err) {
		// Two first-time saves raced; the document exists now.
		_, err = s.c.UpdateOne(ctx, filter, update, opts)
	}
	return err
}
