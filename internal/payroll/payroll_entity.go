package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusPending  = "PENDING"
	StatusReleased = "RELEASED"
	StatusArchived = "ARCHIVED"
)

const (
	PhaseGeneration = "generation"
	PhaseRelease    = "release"
)

// PayrollEntry is one employee's pay for one period. Amounts are centavos.
// Once RELEASED the Breakdown is the authoritative record and is never recomputed.
type PayrollEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payroll_entry_employee_period"`
	EmployeeName string    `gorm:"type:varchar(150);not null"`

	PeriodStart time.Time `gorm:"type:date;not null;uniqueIndex:uq_payroll_entry_employee_period;index:idx_payroll_entries_period"`
	PeriodEnd   time.Time `gorm:"type:date;not null;uniqueIndex:uq_payroll_entry_employee_period;index:idx_payroll_entries_period"`

	BaseSalary      int64 `gorm:"type:bigint;not null;default:0"`
	SupplementalPay int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions int64 `gorm:"type:bigint;not null;default:0"`
	NetPay          int64 `gorm:"type:bigint;not null;default:0"`

	Status    string                        `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Breakdown datatypes.JSONType[Breakdown] `gorm:"not null"`

	GeneratedBy *uuid.UUID `gorm:"type:uuid"`
	ReleasedBy  *uuid.UUID `gorm:"type:uuid"`
	ReleasedAt  *time.Time `gorm:"index"`
	ArchivedAt  *time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PayrollEntry) TableName() string {
	return "payroll_entries"
}

// Breakdown is the frozen line-level record behind an entry's totals.
type Breakdown struct {
	Phase  string         `json:"phase"`
	Period PeriodSnapshot `json:"period"`

	BaseSalary   int64              `json:"base_salary"`
	Supplemental []SupplementalLine `json:"supplemental"`

	Deductions           []DeductionLine `json:"deductions"`
	AttendanceDeductions []DeductionLine `json:"attendance_deductions"`
	AttendanceIncluded   bool            `json:"attendance_included"`
	Loans                []LoanLine      `json:"loans"`

	Totals     Totals    `json:"totals"`
	ComputedAt time.Time `json:"computed_at"`
}

type PeriodSnapshot struct {
	Start       string          `json:"start"`
	End         string          `json:"end"`
	WorkingDays int             `json:"working_days"`
	Factor      decimal.Decimal `json:"factor"`
}

type SupplementalLine struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
}

type DeductionLine struct {
	DeductionID uuid.UUID `json:"deduction_id"`
	TypeID      uuid.UUID `json:"type_id"`
	TypeName    string    `json:"type_name"`
	Mandatory   bool      `json:"mandatory"`
	AutoApplied bool      `json:"auto_applied,omitempty"`
	AppliedAt   time.Time `json:"applied_at"`
	Amount      int64     `json:"amount"`
}

type LoanLine struct {
	LoanID        uuid.UUID       `json:"loan_id"`
	Principal     int64           `json:"principal"`
	Percent       decimal.Decimal `json:"monthly_payment_percent"`
	Installment   int64           `json:"installment"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
}

type Totals struct {
	Gross           int64 `json:"gross"`
	Supplemental    int64 `json:"supplemental"`
	Deductions      int64 `json:"deductions"`
	Attendance      int64 `json:"attendance"`
	Loans           int64 `json:"loans"`
	TotalDeductions int64 `json:"total_deductions"`
	NetPay          int64 `json:"net_pay"`
}
