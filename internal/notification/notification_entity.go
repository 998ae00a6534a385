package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecipientEmployee = "EMPLOYEE"
	RecipientAdmin    = "ADMIN"

	TypePayrollReleased = "payroll_released"
	TypeReleaseSummary  = "payroll_release_summary"
)

type Notification struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipientID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RecipientKind string    `gorm:"type:varchar(20);not null"`
	Type          string    `gorm:"type:varchar(50);not null"`
	Title         string    `gorm:"type:varchar(200);not null"`
	Body          string    `gorm:"type:text"`
	DedupeKey     string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	ReadAt        *time.Time
	CreatedAt     time.Time
}

func (Notification) TableName() string {
	return "notifications"
}

// Message is what producers hand to a Sink.
type Message struct {
	DedupeKey     string
	RecipientID   uuid.UUID
	RecipientKind string
	Type          string
	Title         string
	Body          string
}
