package payroll

import (
	"time"

	"barangay-payroll/internal/employee"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EntryInput struct {
	Period            Period
	Personnel         employee.Personnel
	Earnings          Earnings
	Deductions        DeductionSelection
	IncludeAttendance bool
	Loans             LoanPlan
	Phase             string
	ComputedAt        time.Time
}

// BuildEntry assembles an unsaved PENDING entry whose totals are exact sums of its lines.
func BuildEntry(in EntryInput) PayrollEntry {
	b := Breakdown{
		Phase:                in.Phase,
		Period:               in.Period.Snapshot(),
		BaseSalary:           in.Earnings.BaseSalary,
		Supplemental:         nonNilSupplemental(in.Earnings.Supplemental),
		Deductions:           nonNilDeductions(in.Deductions.Lines),
		AttendanceDeductions: []DeductionLine{},
		AttendanceIncluded:   in.IncludeAttendance,
		Loans:                in.Loans.Lines,
		ComputedAt:           in.ComputedAt,
	}
	if b.Loans == nil {
		b.Loans = []LoanLine{}
	}
	if in.IncludeAttendance {
		b.AttendanceDeductions = nonNilDeductions(in.Deductions.Attendance)
	}
	b.Totals = computeTotals(b)

	return PayrollEntry{
		ID:              uuid.New(),
		EmployeeID:      in.Personnel.ID,
		EmployeeName:    in.Personnel.FullName,
		PeriodStart:     in.Period.Start,
		PeriodEnd:       in.Period.End,
		BaseSalary:      b.BaseSalary,
		SupplementalPay: b.Totals.Supplemental,
		TotalDeductions: b.Totals.TotalDeductions,
		NetPay:          b.Totals.NetPay,
		Status:          StatusPending,
		Breakdown:       datatypes.NewJSONType(b),
	}
}

func computeTotals(b Breakdown) Totals {
	var t Totals
	for _, s := range b.Supplemental {
		t.Supplemental += s.Amount
	}
	t.Deductions = sumLines(b.Deductions)
	t.Attendance = sumLines(b.AttendanceDeductions)
	for _, l := range b.Loans {
		t.Loans += l.Installment
	}
	t.Gross = b.BaseSalary + t.Supplemental
	t.TotalDeductions = t.Deductions + t.Attendance + t.Loans
	t.NetPay = t.Gross - t.TotalDeductions
	return t
}

// applyRecompute copies the recomputed figures onto a stored entry, keeping its identity.
func applyRecompute(dst *PayrollEntry, src PayrollEntry) {
	dst.BaseSalary = src.BaseSalary
	dst.SupplementalPay = src.SupplementalPay
	dst.TotalDeductions = src.TotalDeductions
	dst.NetPay = src.NetPay
	dst.Breakdown = src.Breakdown
}

func nonNilSupplemental(lines []SupplementalLine) []SupplementalLine {
	if lines == nil {
		return []SupplementalLine{}
	}
	return lines
}

func nonNilDeductions(lines []DeductionLine) []DeductionLine {
	if lines == nil {
		return []DeductionLine{}
	}
	return lines
}
