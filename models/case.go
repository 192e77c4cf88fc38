package models

import (
	"time"

	"gorm.io/gorm"
)

// Case statuses. A case starts as StatusNew and moves through the review
// cycle; Milled and Delivered are set directly by an admin once the case is
// finished. Delivered is terminal.
const (
	StatusNew            = "New"
	StatusInProgress     = "In Progress"
	StatusReadyForReview = "Ready for Review"
	StatusFinished       = "Finished"
	StatusNeedsEdit      = "Needs Edit"
	StatusMilled         = "Milled"
	StatusDelivered      = "Delivered"
)

// Case priorities
const (
	PriorityNormal = "Normal"
	PriorityUrgent = "Urgent"
)

// Audit log entry types
const (
	AuditCreation     = "creation"
	AuditStatusChange = "status_change"
	AuditNote         = "note"
	AuditFileChange   = "file_change"
	AuditGeneral      = "general"
)

// ValidStatus reports whether s is one of the defined case statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReadyForReview, StatusFinished,
		StatusNeedsEdit, StatusMilled, StatusDelivered:
		return true
	}
	return false
}

// Order is a service line item on a case. Price is a snapshot captured when
// the order is placed; later edits to a technician's price list do not touch
// it. Teeth holds Palmer-notation identifiers (e.g. "UR3") and is empty for
// services billed by quantity.
type Order struct {
	ServiceName string   `json:"serviceName"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Teeth       []string `json:"teeth"`
}

// CaseNote is a free-text message attached to a case.
type CaseNote struct {
	ID         string    `json:"id"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// CaseFile is a file attachment on a case. S3Key locates the object in the
// bucket; URL is a presigned link filled in when the case is served.
type CaseFile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	S3Key          string `json:"s3_key,omitempty"`
	URL            string `json:"url,omitempty"`
	UploadedByID   uint   `json:"uploadedById"`
	UploadedByName string `json:"uploadedByName"`
}

// AuditLog is one entry in a case's append-only activity history.
type AuditLog struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Activity   string    `json:"activity"`
	AuthorName string    `json:"authorName"`
	Type       string    `json:"type"`
}

// Case represents a dental-lab case in the system
type Case struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CaseName     string         `gorm:"not null" json:"case_name"`
	DueDate      time.Time      `gorm:"not null" json:"due_date"`
	TechnicianID uint           `gorm:"not null;index" json:"technician_id"`
	Technician   *Technician    `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	Status       string         `gorm:"not null;default:'New'" json:"status"`
	Priority     string         `gorm:"not null;default:'Normal'" json:"priority"`
	Doctor       string         `json:"doctor"`
	Branch       string         `json:"branch"`
	Color        *string        `json:"color,omitempty"` // shade code, e.g. "A2"
	Orders       OrderList      `gorm:"type:text" json:"orders"`
	Notes        NoteList       `gorm:"type:text" json:"notes"`
	Files        FileList       `gorm:"type:text" json:"files"`
	ActivityLog  AuditLogList   `gorm:"type:text" json:"activity_log"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Case model
func (Case) TableName() string {
	return "cases"
}
