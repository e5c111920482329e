package assignments_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyhub/internal/app/features/assignments"
	"github.com/dalemusser/studyhub/internal/domain/models"
	"github.com/dalemusser/studyhub/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*assignments.Handler, *testutil.Fixtures, *models.User) {
	t.Helper()
	db := testutil.SetupIndexedDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Owner", "owner@example.com")
	return assignments.NewHandler(db, zap.NewNop()), fx, u
}

func TestHandleCreate(t *testing.T) {
	h, _, u := setup(t)

	req := testutil.NewAuthenticatedRequest(t, "POST", "/assignments", map[string]string{
		"title":       "Essay",
		"description": "Five paragraphs",
		"due_date":    "2025-03-01T17:00:00-07:00",
		"course_name": "ENGL 150",
	}, u)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var a models.Assignment
	testutil.DecodeJSON(t, rec, &a)
	if a.ID == "" || a.UserID != u.ID {
		t.Errorf("assignment id/user = %q/%q", a.ID, a.UserID)
	}
	if a.Source != models.SourceManual || a.Completed {
		t.Errorf("source=%q completed=%v, want manual/false", a.Source, a.Completed)
	}
	want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	if !a.DueDate.Equal(want) {
		t.Errorf("due_date = %v, want %v", a.DueDate, want)
	}
}

func TestHandleCreate_NaiveDueDates(t *testing.T) {
	h, _, u := setup(t)

	tests := []struct {
		due  string
		want time.Time
	}{
		{"2025-03-01T17:00", time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)},
		{"2025-03-01T17:00:00.123456", time.Date(2025, 3, 1, 17, 0, 0, 123456000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.due, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/assignments",
				map[string]string{"title": "x", "due_date": tt.due}, u))

			testutil.AssertStatus(t, rec, http.StatusOK)
			var a models.Assignment
			testutil.DecodeJSON(t, rec, &a)
			if !a.DueDate.Equal(tt.want) {
				t.Errorf("due_date = %v, want %v", a.DueDate, tt.want)
			}
		})
	}
}

func TestHandleCreate_BadDueDateNamesField(t *testing.T) {
	h, _, u := setup(t)

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/assignments",
		map[string]string{"title": "x", "due_date": "next tuesday"}, u))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	if d := testutil.Detail(t, rec); !strings.Contains(d, "due_date") {
		t.Errorf("detail = %q, want it to name due_date", d)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _, u := setup(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing title", map[string]string{"due_date": "2025-03-01T00:00:00Z"}},
		{"missing due date", map[string]string{"title": "x"}},
		{"bad due date", map[string]string{"title": "x", "due_date": "next tuesday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, testutil.NewAuthenticatedRequest(t, "POST", "/assignments", tt.body, u))
			testutil.AssertStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestServeList_OwnAssignmentsByDueDate(t *testing.T) {
	h, fx, u := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fx.CreateAssignment(ctx, u.ID, "later", base.Add(48*time.Hour))
	fx.CreateAssignment(ctx, u.ID, "sooner", base)
	other := fx.CreateUser(ctx, "Other", "other@example.com")
	fx.CreateAssignment(ctx, other.ID, "not mine", base)

	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/assignments", nil, u))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Assignment
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("got %d assignments, want 2", len(list))
	}
	if list[0].Title != "sooner" || list[1].Title != "later" {
		t.Errorf("order = %q, %q", list[0].Title, list[1].Title)
	}
}

func TestServeList_EmptyIsArray(t *testing.T) {
	h, _, u := setup(t)

	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/assignments", nil, u))

	testutil.AssertStatus(t, rec, http.StatusOK)
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestToggleComplete_TwiceRestoresInitialValue(t *testing.T) {
	h, fx, u := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAssignment(ctx, u.ID, "Quiz", time.Now())

	toggle := func() bool {
		req := testutil.NewAuthenticatedRequest(t, "PATCH", "/assignments/"+a.ID+"/complete", nil, u)
		req = testutil.WithChiURLParam(req, "id", a.ID)
		rec := httptest.NewRecorder()
		h.HandleToggleComplete(rec, req)
		testutil.AssertStatus(t, rec, http.StatusOK)
		var body struct {
			Completed bool `json:"completed"`
		}
		testutil.DecodeJSON(t, rec, &body)
		return body.Completed
	}

	if !toggle() {
		t.Error("first toggle should complete the assignment")
	}
	if toggle() {
		t.Error("second toggle should restore completed=false")
	}
}

func TestOwnershipScoping(t *testing.T) {
	h, fx, u := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAssignment(ctx, u.ID, "Mine", time.Now())
	intruder := fx.CreateUser(ctx, "Intruder", "intruder@example.com")

	tests := []struct {
		name string
		id   string
		call func(http.ResponseWriter, *http.Request)
	}{
		{"toggle other's", a.ID, h.HandleToggleComplete},
		{"delete other's", a.ID, h.HandleDelete},
		{"toggle missing", "missing", h.HandleToggleComplete},
		{"delete missing", "missing", h.HandleDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(t, "DELETE", "/assignments/"+tt.id, nil, intruder)
			req = testutil.WithChiURLParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			tt.call(rec, req)
			testutil.AssertStatus(t, rec, http.StatusNotFound)
			if got := testutil.Detail(t, rec); got != "Assignment not found" {
				t.Errorf("detail = %q", got)
			}
		})
	}
}

func TestHandleDelete(t *testing.T) {
	h, fx, u := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAssignment(ctx, u.ID, "Gone", time.Now())

	del := func() *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(t, "DELETE", "/assignments/"+a.ID, nil, u)
		req = testutil.WithChiURLParam(req, "id", a.ID)
		rec := httptest.NewRecorder()
		h.HandleDelete(rec, req)
		return rec
	}

	rec := del()
	testutil.AssertStatus(t, rec, http.StatusOK)
	var body struct {
		Message string `json:"message"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Message != "Assignment deleted" {
		t.Errorf("message = %q", body.Message)
	}

	testutil.AssertStatus(t, del(), http.StatusNotFound)
}

func TestRoutes_PatchComplete(t *testing.T) {
	h, fx, u := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := fx.CreateAssignment(ctx, u.ID, "Routed", time.Now())

	req := testutil.NewAuthenticatedRequest(t, "PATCH", "/"+a.ID+"/complete", nil, u)
	rec := httptest.NewRecorder()
	assignments.Routes(h).ServeHTTP(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
}
