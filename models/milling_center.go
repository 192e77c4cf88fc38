package models

import (
	"time"

	"gorm.io/gorm"
)

// MillingCenter is an external milling/printing partner that finished cases
// can be sent to.
type MillingCenter struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	PhoneNumber string         `gorm:"not null" json:"phone_number"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MillingCenter model
func (MillingCenter) TableName() string {
	return "milling_centers"
}
