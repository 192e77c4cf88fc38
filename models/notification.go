package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a message shown in the dashboard bell. RecipientID is the
// target user; nil means the notification is broadcast to everyone.
type Notification struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Message     string         `gorm:"not null" json:"message"`
	Link        string         `json:"link"`
	RecipientID *uint          `gorm:"index" json:"recipient_id,omitempty"`
	IsRead      bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
