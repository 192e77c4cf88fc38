package models

import (
	"time"

	"gorm.io/gorm"
)

// ServicePrice is one row of a technician's price list.
type ServicePrice struct {
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
}

// Technician represents a lab technician. UserID links the technician to the
// account they sign in with. Pricing is technician-specific and editable at
// any time; case orders snapshot prices when placed, so edits here never
// retroactively change existing cases.
type Technician struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;uniqueIndex" json:"user_id"`
	User      *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name      string           `gorm:"not null" json:"name"`
	Email     string           `gorm:"not null" json:"email"`
	Phone     string           `json:"phone"`
	Skills    StringList       `gorm:"type:text" json:"skills"`
	Pricing   ServicePriceList `gorm:"type:text" json:"pricing"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}
