// internal/domain/models/message.go
package models

import "time"

// Message is a chat line posted to a group. Messages are immutable.
// UserName is the sender's display name at send time.
type Message struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
