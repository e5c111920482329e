// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims surrounding space and lower-cases the address.
// Stored emails are always in this form so the unique index is case-insensitive.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses internal runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AuthType trims and lower-cases an auth type value.
func AuthType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims surrounding whitespace only.
func Text(s string) string {
	return strings.TrimSpace(s)
}
