package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a barangay personnel record as seen by payroll.
type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"type:varchar(30);uniqueIndex"`
	FullName       string    `gorm:"type:varchar(150);not null"`
	Position       string    `gorm:"type:varchar(100)"`
	IsActive       bool      `gorm:"not null;default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Employee) TableName() string {
	return "employees"
}

// Personnel is an active employee joined with the salary basis in force for a period.
// SalaryBasis is nil when no salary has been assigned yet.
type Personnel struct {
	ID          uuid.UUID
	FullName    string
	SalaryBasis *int64
}
