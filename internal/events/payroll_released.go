package events

import "time"

const (
	PayrollReleaseFollowUpTopic = "barangay.payroll.release.followup.v1"

	PayrollDeductionsArchiveRequested = "payroll_deductions_archive_requested"
	PayrollNotificationRequested      = "payroll_notification_requested"
)

// PayrollDeductionsArchiveRequestedEvent lists the deduction instances a release consumed.
type PayrollDeductionsArchiveRequestedEvent struct {
	EventType    string    `json:"event_type"`
	EmployeeID   string    `json:"employee_id"`
	PeriodStart  string    `json:"period_start"`
	PeriodEnd    string    `json:"period_end"`
	DeductionIDs []string  `json:"deduction_ids"`
	ReleasedAt   time.Time `json:"released_at"`
}

type PayrollNotificationRequestedEvent struct {
	EventType     string    `json:"event_type"`
	DedupeKey     string    `json:"dedupe_key"`
	RecipientID   string    `json:"recipient_id"`
	RecipientKind string    `json:"recipient_kind"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	PeriodStart   string    `json:"period_start"`
	PeriodEnd     string    `json:"period_end"`
	OccurredAt    time.Time `json:"occurred_at"`
}
