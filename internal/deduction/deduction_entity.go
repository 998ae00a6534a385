package deduction

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ModeFixed      = "FIXED"
	ModePercentage = "PERCENTAGE"
)

// DeductionType is a catalog entry. Mandatory types are owed by every active employee
// every period, whatever the applied date of their instance.
type DeductionType struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name            string          `gorm:"type:varchar(120);not null;uniqueIndex"`
	IsMandatory     bool            `gorm:"not null;default:false"`
	CalculationMode string          `gorm:"type:varchar(20);not null;default:'FIXED'"`
	DefaultAmount   int64           `gorm:"type:bigint;not null;default:0"`       // centavos, FIXED mode
	Rate            decimal.Decimal `gorm:"type:numeric(7,4);not null;default:0"` // percent of base salary, PERCENTAGE mode
	IsActive        bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DeductionType) TableName() string {
	return "deduction_types"
}

// attendanceKeywords mark deductions that come from time-keeping (late, absent, undertime).
var attendanceKeywords = []string{"late", "absent", "early", "tardiness", "attendance", "partial"}

// IsAttendance reports whether the type belongs to the attendance category.
func (t DeductionType) IsAttendance() bool {
	return IsAttendanceName(t.Name)
}

func IsAttendanceName(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range attendanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DefaultAmountFor is the amount an automatically applied instance carries.
func (t DeductionType) DefaultAmountFor(baseSalary int64) int64 {
	if t.CalculationMode == ModePercentage {
		return decimal.NewFromInt(baseSalary).
			Mul(t.Rate).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	}
	return t.DefaultAmount
}

// Deduction is an applied instance of a DeductionType for one employee.
type Deduction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DeductionTypeID uuid.UUID      `gorm:"type:uuid;not null;index"`
	DeductionType   *DeductionType `gorm:"foreignKey:DeductionTypeID;references:ID"`
	EmployeeID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_deductions_employee_archived"`
	Amount          int64          `gorm:"type:bigint;not null;default:0"` // centavos
	AppliedAt       time.Time      `gorm:"not null;index"`
	ArchivedAt      *time.Time     `gorm:"index:idx_deductions_employee_archived"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Deduction) TableName() string {
	return "deductions"
}
