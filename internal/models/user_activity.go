package models

import (
	"time"
)

// UserActivity is the durable server-side cooldown record, keyed by user.
// Each column is updated independently when the matching action succeeds.
// Rows are never deleted. This record is the authoritative cooldown truth;
// Redis TTL keys and any client-local state are advisory fast paths.
type UserActivity struct {
	UserID string `gorm:"primaryKey" json:"user_id"`

	LastPostAt              *time.Time `json:"last_post_at,omitempty"`
	LastBugReportAt         *time.Time `json:"last_bug_report_at,omitempty"`
	LastFeatureSuggestionAt *time.Time `json:"last_feature_suggestion_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (UserActivity) TableName() string {
	return "user_activities"
}
