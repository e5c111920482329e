// internal/domain/models/user.go
package models

import "time"

// User is a student account.
//
// NOTE:
//   - ID is an opaque uuid string assigned on creation and never changed.
//   - PasswordHash is only set for AuthEmail users and is never serialized to JSON.
//   - GroupIDs mirrors groups.member_ids; the two are written together but not atomically
//     on every deployment (see groupstore).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	AuthType     string    `json:"auth_type"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	GroupIDs     []string  `json:"group_ids"`
}
