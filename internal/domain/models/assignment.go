// internal/domain/models/assignment.go
package models

import "time"

// Assignment sources.
const (
	SourceManual        = "manual"
	SourceLearningSuite = "learning_suite"
	SourceCanvas        = "canvas"
)

// Assignment is a task tracked by exactly one user.
type Assignment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Source      string    `json:"source"`
	CourseName  string    `json:"course_name"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
