package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Post is the private, author-attributable record of a thought. It is never
// served to other users; the redacted PublicPost materialization is.
//
// ReportCount only ever increases. Posts are never deleted: visibility is
// derived from the report count and the immunity flag at read time.
type Post struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Content     string `gorm:"type:text;not null" json:"content"`
	AuthorID    string `gorm:"not null;index" json:"author_id"`
	ReportCount int    `gorm:"not null;default:0" json:"report_count"`
	IsImmune    bool   `gorm:"not null;default:false" json:"is_immune"`

	CreatedAt time.Time `gorm:"index:idx_posts_created_id,priority:1,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate validates the record at the store boundary
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		return fmt.Errorf("post id is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("post content is required")
	}
	if p.AuthorID == "" {
		return fmt.Errorf("post author id is required")
	}
	if p.ReportCount < 0 {
		return fmt.Errorf("report count cannot be negative")
	}
	return nil
}

// PublicPost is the redacted materialization of a Post, sharing its ID but
// carrying no author attribution. The feed reads exclusively from this table.
// Its ReportCount may trail the private record only while a report
// transaction is in flight.
type PublicPost struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Content     string `gorm:"type:text;not null" json:"content"`
	ReportCount int    `gorm:"not null;default:0" json:"report_count"`
	IsImmune    bool   `gorm:"not null;default:false" json:"is_immune"`

	CreatedAt time.Time `gorm:"index:idx_public_posts_created_id,priority:1,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (PublicPost) TableName() string {
	return "public_posts"
}

// BeforeCreate validates the record at the store boundary
func (p *PublicPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		return fmt.Errorf("public post id is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("public post content is required")
	}
	if p.ReportCount < 0 {
		return fmt.Errorf("report count cannot be negative")
	}
	return nil
}

// Public returns the redacted materialization of a private post
func (p *Post) Public() PublicPost {
	return PublicPost{
		ID:          p.ID,
		Content:     p.Content,
		ReportCount: p.ReportCount,
		IsImmune:    p.IsImmune,
		CreatedAt:   p.CreatedAt,
	}
}
