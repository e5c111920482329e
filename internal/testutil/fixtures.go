package testutil

import (
	"context"
	"testing"
	"time"

	assignmentstore "github.com/dalemusser/studyhub/internal/app/store/assignments"
	groupstore "github.com/dalemusser/studyhub/internal/app/store/groups"
	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	userstore "github.com/dalemusser/studyhub/internal/app/store/users"
	"github.com/dalemusser/studyhub/internal/app/system/authutil"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the password of every user created by CreateUser.
const FixturePassword = "password123"

// Fixtures provides helper methods for creating test data through the
// real stores, so documents have exactly the production shape.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
// It lowers the bcrypt cost so user creation stays fast.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	authutil.BcryptCost = bcrypt.MinCost
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an email-authenticated user with FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) *models.User {
	f.t.Helper()
	u, err := userstore.New(f.db).Create(ctx, userstore.NewUser{
		Email:    email,
		FullName: fullName,
		AuthType: models.AuthEmail,
		Password: FixturePassword,
	})
	if err != nil {
		f.t.Fatalf("create user %q: %v", email, err)
	}
	return u
}

// CreateGroup creates a group owned (and joined) by ownerID.
func (f *Fixtures) CreateGroup(ctx context.Context, ownerID, name string) models.Group {
	f.t.Helper()
	g, err := groupstore.New(f.db).Create(ctx, ownerID, name, "")
	if err != nil {
		f.t.Fatalf("create group %q: %v", name, err)
	}
	return g
}

// JoinGroup adds userID to groupID.
func (f *Fixtures) JoinGroup(ctx context.Context, groupID, userID string) {
	f.t.Helper()
	if _, err := groupstore.New(f.db).Join(ctx, groupID, userID); err != nil {
		f.t.Fatalf("join group %s: %v", groupID, err)
	}
}

// CreateMessage posts content to groupID as sender.
func (f *Fixtures) CreateMessage(ctx context.Context, groupID string, sender *models.User, content string) models.Message {
	f.t.Helper()
	m, err := messagestore.New(f.db).Create(ctx, groupID, sender, content)
	if err != nil {
		f.t.Fatalf("create message: %v", err)
	}
	return m
}

// CreateAssignment creates a manual assignment for userID due at due.
func (f *Fixtures) CreateAssignment(ctx context.Context, userID, title string, due time.Time) models.Assignment {
	f.t.Helper()
	a, err := assignmentstore.New(f.db).Create(ctx, userID, assignmentstore.NewAssignment{
		Title:   title,
		DueDate: due,
	})
	if err != nil {
		f.t.Fatalf("create assignment %q: %v", title, err)
	}
	return a
}
