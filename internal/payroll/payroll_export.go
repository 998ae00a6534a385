package payroll

import (
	"github.com/gocarina/gocsv"
)

// ExportRow is one line of the disbursement sheet handed to the barangay treasurer.
// Amounts are pesos with two decimals.
type ExportRow struct {
	EmployeeID      string `csv:"employee_id"`
	EmployeeName    string `csv:"employee_name"`
	PeriodStart     string `csv:"period_start"`
	PeriodEnd       string `csv:"period_end"`
	Status          string `csv:"status"`
	BaseSalary      string `csv:"base_salary"`
	SupplementalPay string `csv:"supplemental_pay"`
	Deductions      string `csv:"deductions"`
	Attendance      string `csv:"attendance_deductions"`
	Loans           string `csv:"loan_payments"`
	TotalDeductions string `csv:"total_deductions"`
	NetPay          string `csv:"net_pay"`
}

func toExportRows(summary SummaryResponse) []ExportRow {
	rows := make([]ExportRow, 0, len(summary.Entries))
	for _, e := range summary.Entries {
		totals := e.Breakdown.Totals
		rows = append(rows, ExportRow{
			EmployeeID:      e.EmployeeID,
			EmployeeName:    e.EmployeeName,
			PeriodStart:     e.PeriodStart,
			PeriodEnd:       e.PeriodEnd,
			Status:          e.Status,
			BaseSalary:      formatCentavos(e.BaseSalary),
			SupplementalPay: formatCentavos(e.SupplementalPay),
			Deductions:      formatCentavos(totals.Deductions),
			Attendance:      formatCentavos(totals.Attendance),
			Loans:           formatCentavos(totals.Loans),
			TotalDeductions: formatCentavos(e.TotalDeductions),
			NetPay:          formatCentavos(e.NetPay),
		})
	}
	return rows
}

// MarshalSummaryCSV renders the summary rows, header first. An empty summary still has a header.
func MarshalSummaryCSV(summary SummaryResponse) ([]byte, error) {
	return gocsv.MarshalBytes(toExportRows(summary))
}
