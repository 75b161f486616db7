package models

import (
	"time"
)

// User is an anonymous identity. There is no profile, email, or password:
// the row exists so tokens can be checked against a real identity and so
// receipts and activity records have something to reference.
type User struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
