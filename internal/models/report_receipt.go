package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ReportReceipt records that a user reported a post. Exactly one receipt may
// exist per (post_id, reporter_id) pair; the unique index is what makes
// reporting idempotent even when two transactions race. Receipts are
// immutable and never deleted.
type ReportReceipt struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PostID     string `gorm:"type:uuid;not null;uniqueIndex:idx_report_receipts_unique,priority:1" json:"post_id"`
	ReporterID string `gorm:"not null;uniqueIndex:idx_report_receipts_unique,priority:2" json:"reporter_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (ReportReceipt) TableName() string {
	return "report_receipts"
}

// BeforeCreate validates the record at the store boundary
func (r *ReportReceipt) BeforeCreate(tx *gorm.DB) error {
	if r.PostID == "" {
		return fmt.Errorf("receipt post id is required")
	}
	if r.ReporterID == "" {
		return fmt.Errorf("receipt reporter id is required")
	}
	return nil
}
