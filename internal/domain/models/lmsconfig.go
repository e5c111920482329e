// internal/domain/models/lmsconfig.go
package models

// LMSConfig holds a user's credentials for external learning systems.
// One document per user; missing fields are empty strings.
type LMSConfig struct {
	UserID              string `json:"user_id"`
	LearningSuiteAPIKey string `json:"learning_suite_api_key"`
	CanvasAPIKey        string `json:"canvas_api_key"`
	CanvasDomain        string `json:"canvas_domain"`
}
