package payroll

import (
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/overload"
)

// Earnings is the gross side of an entry.
type Earnings struct {
	BaseSalary        int64
	Supplemental      []SupplementalLine
	SupplementalTotal int64
}

func (e Earnings) Gross() int64 {
	return e.BaseSalary + e.SupplementalTotal
}

// AggregateEarnings sums base salary and the employee's unarchived supplemental pay.
// ok is false for personnel without a salary basis; they are left out of the run.
func AggregateEarnings(p employee.Personnel, pays []overload.OverloadPay) (Earnings, bool) {
	if p.SalaryBasis == nil {
		return Earnings{}, false
	}

	e := Earnings{BaseSalary: *p.SalaryBasis, Supplemental: []SupplementalLine{}}
	for _, pay := range pays {
		if pay.EmployeeID != p.ID || pay.ArchivedAt != nil {
			continue
		}
		e.Supplemental = append(e.Supplemental, SupplementalLine{
			ID:          pay.ID,
			Description: pay.Description,
			Amount:      pay.Amount,
		})
		e.SupplementalTotal += pay.Amount
	}
	return e, true
}

// earningsFromSnapshot restores the gross side frozen at generation time.
func earningsFromSnapshot(b Breakdown) Earnings {
	e := Earnings{BaseSalary: b.BaseSalary, Supplemental: b.Supplemental}
	if e.Supplemental == nil {
		e.Supplemental = []SupplementalLine{}
	}
	for _, line := range e.Supplemental {
		e.SupplementalTotal += line.Amount
	}
	return e
}
