package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// FeedbackCategory distinguishes the two feedback cooldown buckets
type FeedbackCategory string

const (
	FeedbackBugReport         FeedbackCategory = "bug_report"
	FeedbackFeatureSuggestion FeedbackCategory = "feature_suggestion"
)

// Valid reports whether the category is one we accept
func (c FeedbackCategory) Valid() bool {
	return c == FeedbackBugReport || c == FeedbackFeatureSuggestion
}

// Feedback is a stored feedback submission. Rows are kept even after the
// mail forward succeeds so submissions survive SES outages.
type Feedback struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	UserID   string           `gorm:"not null;index" json:"user_id"`
	Category FeedbackCategory `gorm:"size:32;not null;index" json:"category"`
	Message  string           `gorm:"type:text;not null" json:"message"`

	// Forwarded is set once the SES mail went out
	Forwarded bool `gorm:"not null;default:false" json:"forwarded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Feedback) TableName() string {
	return "feedback"
}

// BeforeCreate validates the record at the store boundary
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if !f.Category.Valid() {
		return fmt.Errorf("invalid feedback category %q", f.Category)
	}
	if f.Message == "" {
		return fmt.Errorf("feedback message is required")
	}
	return nil
}
