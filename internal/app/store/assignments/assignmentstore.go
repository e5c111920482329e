// Package assignmentstore persists per-user assignments. Every query is
// scoped to the owning user; another user's assignment is indistinguishable
// from a missing one.
package assignmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxList caps ListForUser.
const MaxList = 1000

var (
	// ErrNotFound is returned when the assignment is absent or owned by someone else.
	ErrNotFound = errors.New("assignment not found")
	// ErrTitleRequired is returned by Create for a blank title.
	ErrTitleRequired = errors.New("assignment title is required")
)

type assignmentDoc struct {
	ID          string `bson:"_id"`
	UserID      string `bson:"user_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	DueDate     string `bson:"due_date"`
	Source      string `bson:"source"`
	CourseName  string `bson:"course_name"`
	Completed   bool   `bson:"completed"`
	CreatedAt   string `bson:"created_at"`
}

func (d assignmentDoc) toModel() (models.Assignment, error) {
	due, err := isotime.Parse(d.DueDate)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("assignment %s: due_date: %w", d.ID, err)
	}
	created, err := isotime.Parse(d.CreatedAt)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("assignment %s: created_at: %w", d.ID, err)
	}
	return models.Assignment{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     due,
		Source:      d.Source,
		CourseName:  d.CourseName,
		Completed:   d.Completed,
		CreatedAt:   created,
	}, nil
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// NewAssignment is the input to Create.
type NewAssignment struct {
	Title       string
	Description string
	DueDate     time.Time
	CourseName  string
	// Source defaults to models.SourceManual.
	Source string
}

// Create stores an incomplete assignment owned by userID.
func (s *Store) Create(ctx context.Context, userID string, in NewAssignment) (models.Assignment, error) {
	title := normalize.Text(in.Title)
	if title == "" {
		return models.Assignment{}, ErrTitleRequired
	}
	source := in.Source
	if source == "" {
		source = models.SourceManual
	}
	d := assignmentDoc{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: normalize.Text(in.Description),
		DueDate:     isotime.Format(in.DueDate),
		Source:      source,
		CourseName:  normalize.Text(in.CourseName),
		Completed:   false,
		CreatedAt:   isotime.Format(isotime.Now()),
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Assignment{}, err
	}
	return d.toModel()
}

// ListForUser returns userID's assignments, soonest due first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Assignment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(MaxList)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	for cur.Next(ctx) {
		var d assignmentDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		a, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

// ToggleComplete flips the completion flag in a single atomic update and
// returns the new value.
func (s *Store) ToggleComplete(ctx context.Context, id, userID string) (bool, error) {
	flip := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"completed": bson.M{"$not": bson.A{bson.M{"$ifNull": bson.A{"$completed", false}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"completed": 1})

	var out struct {
		Completed bool `bson:"completed"`
	}
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, flip, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrNotFound
		}
		return false, err
	}
	return out.Completed, nil
}

// Delete removes the assignment if userID owns it.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
