package overload

import (
	"time"

	"github.com/google/uuid"
)

// OverloadPay is supplemental pay (extra duty, overload hours) added on top of base salary.
type OverloadPay struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Amount      int64      `gorm:"type:bigint;not null;default:0"` // centavos
	Description string     `gorm:"type:varchar(255)"`
	ArchivedAt  *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OverloadPay) TableName() string {
	return "overload_pays"
}
