package messagestore_test

import (
	"errors"
	"testing"

	messagestore "github.com/dalemusser/studyhub/internal/app/store/messages"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sender := &models.User{ID: "u1", FullName: "Ada"}
	for _, content := range []string{"first", "second", "third"} {
		if _, err := store.Create(ctx, "g1", sender, content); err != nil {
			t.Fatalf("Create(%q) failed: %v", content, err)
		}
	}
	if _, err := store.Create(ctx, "g2", sender, "elsewhere"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	msgs, err := store.ListByGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d].Content = %q, want %q", i, msgs[i].Content, want)
		}
		if msgs[i].UserName != "Ada" || msgs[i].UserID != "u1" {
			t.Errorf("msgs[%d] sender = %q/%q", i, msgs[i].UserID, msgs[i].UserName)
		}
	}
}

func TestStore_ListByGroup_OrdersByCreatedAt(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Inserted out of order; different offsets would break a plain text sort,
	// which is why stored timestamps are always UTC.
	_, err := db.Collection("messages").InsertMany(ctx, []any{
		bson.M{"_id": "m2", "group_id": "g1", "user_id": "u", "user_name": "U", "content": "later", "created_at": "2025-03-01T10:00:00.000000+00:00"},
		bson.M{"_id": "m1", "group_id": "g1", "user_id": "u", "user_name": "U", "content": "earlier", "created_at": "2025-02-28T23:59:59.999999+00:00"},
	})
	if err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}

	msgs, err := store.ListByGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].ID != "m2" {
		t.Errorf("unexpected order: %+v", msgs)
	}
}

func TestStore_Create_EmptyContent(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "g1", &models.User{ID: "u1"}, ""); !errors.Is(err, messagestore.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestStore_ListByGroup_Empty(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := messagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	msgs, err := store.ListByGroup(ctx, "nothing-here")
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", msgs)
	}
}
