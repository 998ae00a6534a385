package payroll_test

import (
	"testing"
	"time"

	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/overload"
	"barangay-payroll/internal/payroll"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salary(v int64) *int64 { return &v }

func TestAggregateEarnings(t *testing.T) {
	p := employee.Personnel{ID: uuid.New(), FullName: "Maria Santos", SalaryBasis: salary(2000000)}
	now := time.Now()

	pays := []overload.OverloadPay{
		{ID: uuid.New(), EmployeeID: p.ID, Amount: 150000, Description: "Night duty"},
		{ID: uuid.New(), EmployeeID: p.ID, Amount: 50000, ArchivedAt: &now},
		{ID: uuid.New(), EmployeeID: uuid.New(), Amount: 70000},
	}

	e, ok := payroll.AggregateEarnings(p, pays)
	require.True(t, ok)
	assert.Equal(t, int64(2000000), e.BaseSalary)
	assert.Equal(t, int64(150000), e.SupplementalTotal)
	assert.Equal(t, int64(2150000), e.Gross())
	require.Len(t, e.Supplemental, 1)
	assert.Equal(t, "Night duty", e.Supplemental[0].Description)

	_, ok = payroll.AggregateEarnings(employee.Personnel{ID: uuid.New()}, nil)
	assert.False(t, ok)
}

func TestBuildEntry(t *testing.T) {
	period, err := payroll.NewPeriod(date(2026, 3, 1), date(2026, 3, 15), time.UTC)
	require.NoError(t, err)
	person := employee.Personnel{ID: uuid.New(), FullName: "Juan Dela Cruz", SalaryBasis: salary(2000000)}
	earnings, _ := payroll.AggregateEarnings(person, nil)

	sss := deductionType("SSS", true, 20000)
	late := deductionType("Late", false, 0)
	catalog := payroll.NewCatalog([]deduction.DeductionType{sss, late})
	sel := payroll.SelectDeductions(period, catalog, []deduction.Deduction{
		instance(sss, person.ID, 20000, date(2026, 3, 1)),
		instance(late, person.ID, 30000, date(2026, 3, 9)),
	}, nil)
	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("mandatory deduction only", func(t *testing.T) {
		mand := payroll.SelectDeductions(period, catalog, []deduction.Deduction{
			instance(sss, person.ID, 50000, date(2026, 3, 1)),
		}, nil)

		entry := payroll.BuildEntry(payroll.EntryInput{
			Period:     period,
			Personnel:  person,
			Earnings:   earnings,
			Deductions: mand,
			Loans:      payroll.PlanInstallments(nil, period.Factor()),
			Phase:      payroll.PhaseGeneration,
			ComputedAt: at,
		})

		assert.Equal(t, payroll.StatusPending, entry.Status)
		assert.Equal(t, int64(50000), entry.TotalDeductions)
		assert.Equal(t, int64(1950000), entry.NetPay)
		assert.Equal(t, "Juan Dela Cruz", entry.EmployeeName)
		assert.Equal(t, period.Start, entry.PeriodStart)
	})

	t.Run("attendance excluded", func(t *testing.T) {
		entry := payroll.BuildEntry(payroll.EntryInput{
			Period:     period,
			Personnel:  person,
			Earnings:   earnings,
			Deductions: sel,
			Phase:      payroll.PhaseRelease,
			ComputedAt: at,
		})

		b := entry.Breakdown.Data()
		assert.Equal(t, int64(20000), entry.TotalDeductions)
		assert.Empty(t, b.AttendanceDeductions)
		assert.False(t, b.AttendanceIncluded)
		assert.NotNil(t, b.Loans)
		assert.Equal(t, payroll.PhaseRelease, b.Phase)
	})

	t.Run("attendance included with loan", func(t *testing.T) {
		l := loan.Loan{
			ID:                    uuid.New(),
			EmployeeID:            person.ID,
			Amount:                1000000,
			Balance:               1000000,
			MonthlyPaymentPercent: decimal.NewFromInt(10),
			Status:                loan.StatusActive,
		}

		entry := payroll.BuildEntry(payroll.EntryInput{
			Period:            period,
			Personnel:         person,
			Earnings:          earnings,
			Deductions:        sel,
			IncludeAttendance: true,
			Loans:             payroll.PlanInstallments([]loan.Loan{l}, period.Factor()),
			Phase:             payroll.PhaseRelease,
			ComputedAt:        at,
		})

		b := entry.Breakdown.Data()
		assert.Equal(t, int64(20000+30000+100000), entry.TotalDeductions)
		assert.Equal(t, int64(2000000-150000), entry.NetPay)
		assert.Equal(t, payroll.Totals{
			Gross:           2000000,
			Deductions:      20000,
			Attendance:      30000,
			Loans:           100000,
			TotalDeductions: 150000,
			NetPay:          1850000,
		}, b.Totals)
		assert.Equal(t, "2026-03-01", b.Period.Start)
		assert.Equal(t, 10, b.Period.WorkingDays)
	})
}
