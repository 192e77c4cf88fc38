package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment settles a set of finished cases for one technician. CaseIDs lists
// the cases covered; a case present in any payment's list no longer counts
// toward the technician's amount owed.
type Payment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TechnicianID uint           `gorm:"not null;index" json:"technician_id"`
	Technician   *Technician    `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Amount       float64        `gorm:"not null" json:"amount"`
	Date         time.Time      `gorm:"not null" json:"date"`
	CaseIDs      UintList       `gorm:"type:text" json:"case_ids"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
