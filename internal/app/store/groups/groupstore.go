// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/app/system/txn"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxList caps ListForUser.
const MaxList = 1000

var (
	// ErrNotFound is returned when the group does not exist.
	ErrNotFound = errors.New("group not found")
	// ErrNameRequired is returned by Create for a blank name.
	ErrNameRequired = errors.New("group name is required")
)

type groupDoc struct {
	ID          string   `bson:"_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description,omitempty"`
	MemberIDs   []string `bson:"member_ids"`
	CreatedAt   string   `bson:"created_at"`
}

func (d groupDoc) toModel() (models.Group, error) {
	created, err := isotime.Parse(d.CreatedAt)
	if err != nil {
		return models.Group{}, fmt.Errorf("group %s: created_at: %w", d.ID, err)
	}
	members := d.MemberIDs
	if members == nil {
		members = []string{}
	}
	return models.Group{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		MemberIDs:   members,
		CreatedAt:   created,
	}, nil
}

// Store is the group registry. Membership lives in groups.member_ids and
// is mirrored into users.group_ids; writes that touch both run in a
// transaction where the deployment supports one (see txn.Run).
type Store struct {
	client *mongo.Client
	c      *mongo.Collection
	users  *userstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		c:      db.Collection("groups"),
		users:  userstore.New(db),
	}
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Group, error) {
	var d groupDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return d.toModel()
}

// Create inserts a group whose only member is ownerID and records the
// group on the owner. The description is sanitized HTML.
func (s *Store) Create(ctx context.Context, ownerID, name, description string) (models.Group, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Group{}, ErrNameRequired
	}
	d := groupDoc{
		ID:          uuid.NewString(),
		Name:        name,
		Description: htmlsanitize.Sanitize(description),
		MemberIDs:   []string{ownerID},
		CreatedAt:   isotime.Format(isotime.Now()),
	}

	err := txn.Run(ctx, s.client, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, d); err != nil {
			return err
		}
		return s.users.AddGroup(ctx, ownerID, d.ID)
	})
	if err != nil {
		return models.Group{}, err
	}
	return d.toModel()
}

// Join adds userID to the group. Joining twice has no further effect and
// reports already=true. Returns ErrNotFound if the group does not exist.
func (s *Store) Join(ctx context.Context, groupID, userID string) (already bool, err error) {
	err = txn.Run(ctx, s.client, func(ctx context.Context) error {
		already = false
		g, err := s.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if g.HasMember(userID) {
			already = true
			return nil
		}
		if _, err := s.c.UpdateOne(ctx,
			bson.M{"_id": groupID},
			bson.M{"$addToSet": bson.M{"member_ids": userID}},
		); err != nil {
			return err
		}
		return s.users.AddGroup(ctx, userID, groupID)
	})
	return already, err
}

// ListForUser returns the groups userID belongs to, oldest first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(MaxList)
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	for cur.Next(ctx) {
		var d groupDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		g, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, cur.Err()
}

// IsMember is the membership gate for group-scoped reads and writes. An
// unknown group yields false.
func (s *Store) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx,
		bson.M{"_id": groupID, "member_ids": userID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
