package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusRejected  = "REJECTED"
)

// Loan is a salary loan repaid by payroll installments while ACTIVE.
type Loan struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_loans_employee_status"`
	Amount                int64           `gorm:"type:bigint;not null"`           // centavos
	Balance               int64           `gorm:"type:bigint;not null;default:0"` // centavos
	MonthlyPaymentPercent decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"`
	Status                string          `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_loans_employee_status"`
	Purpose               string          `gorm:"type:text"`
	ApprovedAt            *time.Time
	CompletedAt           *time.Time
	ArchivedAt            *time.Time `gorm:"index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Loan) TableName() string {
	return "loans"
}
