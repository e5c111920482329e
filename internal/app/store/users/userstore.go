// Package userstore is the credential store: user records in the "users"
// collection, keyed by an opaque uuid string.
package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/app/system/isotime"
	"github.com/dalemusser/studyhub/internal/app/system/normalize"
	"github.com/dalemusser/studyhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const collection = "users"

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers an unknown email, an account without a
	// local password, and a wrong password alike.
	ErrInvalidCredentials = errors.New("incorrect email or password")

	errBadAuthType = errors.New(`auth_type must be "email"|"google"|"byu_netid"`)
	errNoPassword  = errors.New("password is required for email accounts")
)

// userDoc is the stored shape. Timestamps are ISO-8601 text.
type userDoc struct {
	ID             string   `bson:"_id"`
	Email          string   `bson:"email"`
	FullName       string   `bson:"full_name"`
	AuthType       string   `bson:"auth_type"`
	HashedPassword string   `bson:"hashed_password,omitempty"`
	CreatedAt      string   `bson:"created_at"`
	GroupIDs       []string `bson:"group_ids"`
}

func (d userDoc) toModel() (*models.User, error) {
	created, err := isotime.Parse(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user %s: created_at: %w", d.ID, err)
	}
	groups := d.GroupIDs
	if groups == nil {
		groups = []string{}
	}
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		FullName:     d.FullName,
		AuthType:     d.AuthType,
		PasswordHash: d.HashedPassword,
		CreatedAt:    created,
		GroupIDs:     groups,
	}, nil
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection)}
}

// NewUser is the input to Create. Password is hashed for email accounts
// and ignored otherwise.
type NewUser struct {
	Email    string
	FullName string
	AuthType string
	Password string
}

// Create inserts a new user after normalizing fields.
// Returns ErrDuplicateEmail if the email is already registered.
func (s *Store) Create(ctx context.Context, in NewUser) (*models.User, error) {
	authType := normalize.AuthType(in.AuthType)
	if authType == "" {
		authType = models.AuthEmail
	}
	if !models.IsValidAuthMethod(authType) {
		return nil, errBadAuthType
	}

	d := userDoc{
		ID:        uuid.NewString(),
		Email:     normalize.Email(in.Email),
		FullName:  normalize.Name(in.FullName),
		AuthType:  authType,
		CreatedAt: isotime.Format(isotime.Now()),
		GroupIDs:  []string{},
	}
	if authutil.UsesPassword(authType) {
		if in.Password == "" {
			return nil, errNoPassword
		}
		hash, err := authutil.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		d.HashedPassword = hash
	}

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return d.toModel()
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDoc
	if err := s.c.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d.toModel()
}

// GetByID loads a user by id. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email. Returns ErrNotFound if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// Authenticate checks an email/password pair. Every failure short of a
// store error is ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !authutil.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetOrCreateExternal returns the user registered under email, creating
// one with the given auth type if none exists. An existing user is
// returned as-is even if it registered through another method.
func (s *Store) GetOrCreateExternal(ctx context.Context, email, fullName, authType string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	u, err = s.Create(ctx, NewUser{Email: email, FullName: fullName, AuthType: authType})
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with a concurrent first login.
		return s.GetByEmail(ctx, email)
	}
	return u, err
}

// AddGroup records groupID in the user's group list. Adding the same
// group twice has no effect. Returns ErrNotFound if the user is absent.
func (s *Store) AddGroup(ctx context.Context, userID, groupID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"group_ids": groupID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
