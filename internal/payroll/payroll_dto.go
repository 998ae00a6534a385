package payroll

import "time"

// StatusPreview marks summary rows computed on the fly.
const StatusPreview = "PREVIEW"

type GenerateRequest struct {
	PeriodStart string `json:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" binding:"omitempty,datetime=2006-01-02"`
}

type GenerateResponse struct {
	CreatedCount int            `json:"created_count"`
	Period       PeriodResponse `json:"period"`
}

type ReleaseRequest struct {
	PeriodStart                 string `json:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd                   string `json:"period_end" binding:"omitempty,datetime=2006-01-02"`
	IncludeAttendanceDeductions bool   `json:"include_attendance_deductions"`
}

type ReleaseResponse struct {
	ReleasedCount int            `json:"released_count"`
	Period        PeriodResponse `json:"period"`
}

type SummaryRequest struct {
	PeriodStart string `form:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `form:"period_end" binding:"omitempty,datetime=2006-01-02"`
}

type SummaryResponse struct {
	Period  PeriodResponse  `json:"period"`
	Frozen  bool            `json:"frozen"`
	Entries []EntryResponse `json:"entries"`
	Totals  SummaryTotals   `json:"totals"`
}

type SummaryTotals struct {
	Employees       int   `json:"employees"`
	BaseSalary      int64 `json:"base_salary"`
	SupplementalPay int64 `json:"supplemental_pay"`
	TotalDeductions int64 `json:"total_deductions"`
	NetPay          int64 `json:"net_pay"`
}

type ListEntriesRequest struct {
	Status      string `form:"status"`
	PeriodStart string `form:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `form:"period_end" binding:"omitempty,datetime=2006-01-02"`
}

type PeriodResponse struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	WorkingDays int    `json:"working_days"`
}

// EntryResponse has an empty ID for preview rows that were never stored.
type EntryResponse struct {
	ID              string     `json:"id,omitempty"`
	EmployeeID      string     `json:"employee_id"`
	EmployeeName    string     `json:"employee_name"`
	PeriodStart     string     `json:"period_start"`
	PeriodEnd       string     `json:"period_end"`
	BaseSalary      int64      `json:"base_salary"`
	SupplementalPay int64      `json:"supplemental_pay"`
	TotalDeductions int64      `json:"total_deductions"`
	NetPay          int64      `json:"net_pay"`
	Status          string     `json:"status"`
	ReleasedAt      *time.Time `json:"released_at,omitempty"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty"`
	Breakdown       Breakdown  `json:"breakdown"`
}

func toPeriodResponse(p Period) PeriodResponse {
	return PeriodResponse{
		Start:       p.Start.Format(dateLayout),
		End:         p.End.Format(dateLayout),
		WorkingDays: p.WorkingDays(),
	}
}

func mapToResponse(e PayrollEntry) EntryResponse {
	return EntryResponse{
		ID:              e.ID.String(),
		EmployeeID:      e.EmployeeID.String(),
		EmployeeName:    e.EmployeeName,
		PeriodStart:     e.PeriodStart.Format(dateLayout),
		PeriodEnd:       e.PeriodEnd.Format(dateLayout),
		BaseSalary:      e.BaseSalary,
		SupplementalPay: e.SupplementalPay,
		TotalDeductions: e.TotalDeductions,
		NetPay:          e.NetPay,
		Status:          e.Status,
		ReleasedAt:      e.ReleasedAt,
		ArchivedAt:      e.ArchivedAt,
		Breakdown:       e.Breakdown.Data(),
	}
}

func mapToListResponse(entries []PayrollEntry) []EntryResponse {
	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, mapToResponse(e))
	}
	return resp
}

func mapPreviewResponse(entries []PayrollEntry) []EntryResponse {
	resp := mapToListResponse(entries)
	for i := range resp {
		resp[i].ID = ""
		resp[i].Status = StatusPreview
	}
	return resp
}

func summarize(period Period, frozen bool, entries []EntryResponse) SummaryResponse {
	totals := SummaryTotals{Employees: len(entries)}
	for _, e := range entries {
		totals.BaseSalary += e.BaseSalary
		totals.SupplementalPay += e.SupplementalPay
		totals.TotalDeductions += e.TotalDeductions
		totals.NetPay += e.NetPay
	}
	return SummaryResponse{
		Period:  toPeriodResponse(period),
		Frozen:  frozen,
		Entries: entries,
		Totals:  totals,
	}
}
