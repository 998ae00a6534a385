package employeesalary

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeSalary is a salary basis assignment. The row with the latest EffectiveDate
// on or before a payroll period's end is the employee's full-period base pay.
type EmployeeSalary struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employee_salary_effective"`
	BaseSalary    int64     `gorm:"type:bigint;not null;default:0"` // centavos
	EffectiveDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_employee_salary_effective"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (EmployeeSalary) TableName() string {
	return "employee_salaries"
}
