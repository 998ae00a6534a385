package payroll_test

import (
	"strings"
	"testing"

	"barangay-payroll/internal/payroll"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSummaryCSV(t *testing.T) {
	t.Run("header and amounts in pesos", func(t *testing.T) {
		summary := payroll.SummaryResponse{
			Entries: []payroll.EntryResponse{{
				EmployeeID:      "emp-1",
				EmployeeName:    "Santos, Maria",
				PeriodStart:     "2026-03-01",
				PeriodEnd:       "2026-03-15",
				Status:          payroll.StatusPending,
				BaseSalary:      2000000,
				SupplementalPay: 150050,
				TotalDeductions: 100000,
				NetPay:          2050050,
				Breakdown: payroll.Breakdown{Totals: payroll.Totals{
					Deductions: 50000,
					Attendance: 20000,
					Loans:      30000,
				}},
			}},
		}

		out, err := payroll.MarshalSummaryCSV(summary)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t,
			"employee_id,employee_name,period_start,period_end,status,base_salary,supplemental_pay,deductions,attendance_deductions,loan_payments,total_deductions,net_pay",
			lines[0])
		assert.Equal(t,
			`emp-1,"Santos, Maria",2026-03-01,2026-03-15,PENDING,20000.00,1500.50,500.00,200.00,300.00,1000.00,20500.50`,
			lines[1])
	})

	t.Run("empty summary keeps header", func(t *testing.T) {
		out, err := payroll.MarshalSummaryCSV(payroll.SummaryResponse{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(out), "employee_id,employee_name"))
	})
}
