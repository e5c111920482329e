// internal/domain/models/group.go
package models

import "time"

// Group is a study group. Membership is embedded as a set of user ids;
// the creator is always the first member.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberIDs   []string  `json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasMember reports whether userID is in the member set.
func (g Group) HasMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
