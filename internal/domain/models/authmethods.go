// internal/domain/models/authmethods.go
package models

// Auth types recorded on a User. The set is closed.
const (
	AuthEmail    = "email"
	AuthGoogle   = "google"
	AuthBYUNetID = "byu_netid"
)

// AuthMethod pairs a stored auth type with its display label.
type AuthMethod struct {
	Value string // The value stored in the database
	Label string // The display label
}

// AllAuthMethods contains every auth type a user record may carry.
var AllAuthMethods = []AuthMethod{
	{Value: AuthEmail, Label: "Email & Password"},
	{Value: AuthGoogle, Label: "Google"},
	{Value: AuthBYUNetID, Label: "BYU NetID"},
}

// IsValidAuthMethod checks if a value is a valid auth type.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}

// AuthMethodValues returns just the stored values, in declaration order.
func AuthMethodValues() []string {
	values := make([]string, len(AllAuthMethods))
	for i, m := range AllAuthMethods {
		values[i] = m.Value
	}
	return values
}
