package payroll_test

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/messaging/kafka"
	"barangay-payroll/internal/notification"
	"barangay-payroll/internal/overload"
	"barangay-payroll/internal/payroll"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memEntryRepo keeps payroll entries in memory. Transactions are not modelled; tests only
// assert on state after a successful commit or that nothing was written.
type memEntryRepo struct {
	entries []payroll.PayrollEntry

	createBatchFn  func(ctx context.Context, entries []payroll.PayrollEntry) error
	markReleasedFn func(ctx context.Context, entry payroll.PayrollEntry) (bool, error)
	findByPeriodFn func(ctx context.Context, period payroll.Period, statuses ...string) ([]payroll.PayrollEntry, error)
}

func samePeriod(e payroll.PayrollEntry, p payroll.Period) bool {
	return e.PeriodStart.Equal(p.Start) && e.PeriodEnd.Equal(p.End)
}

func hasStatus(status string, statuses []string) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *memEntryRepo) WithTx(tx *sql.Tx) payroll.Repository {
	return r
}

func (r *memEntryRepo) FindByPeriod(ctx context.Context, period payroll.Period, statuses ...string) ([]payroll.PayrollEntry, error) {
	if r.findByPeriodFn != nil {
		return r.findByPeriodFn(ctx, period, statuses...)
	}
	var out []payroll.PayrollEntry
	for _, e := range r.entries {
		if samePeriod(e, period) && hasStatus(e.Status, statuses) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (r *memEntryRepo) FindLatestPendingPeriod(ctx context.Context) (time.Time, time.Time, bool, error) {
	var start, end time.Time
	found := false
	for _, e := range r.entries {
		if e.Status != payroll.StatusPending {
			continue
		}
		if !found || e.PeriodEnd.After(end) || (e.PeriodEnd.Equal(end) && e.PeriodStart.After(start)) {
			start, end, found = e.PeriodStart, e.PeriodEnd, true
		}
	}
	return start, end, found, nil
}

func (r *memEntryRepo) HasFinalizedForPeriod(ctx context.Context, period payroll.Period) (bool, error) {
	for _, e := range r.entries {
		if samePeriod(e, period) && (e.Status == payroll.StatusReleased || e.Status == payroll.StatusArchived) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEntryRepo) DeletePendingForPeriod(ctx context.Context, period payroll.Period) (int64, error) {
	kept := r.entries[:0]
	var n int64
	for _, e := range r.entries {
		if samePeriod(e, period) && e.Status == payroll.StatusPending {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return n, nil
}

func (r *memEntryRepo) CreateBatch(ctx context.Context, entries []payroll.PayrollEntry) error {
	if r.createBatchFn != nil {
		return r.createBatchFn(ctx, entries)
	}
	for _, e := range entries {
		for _, existing := range r.entries {
			if existing.EmployeeID == e.EmployeeID && existing.PeriodStart.Equal(e.PeriodStart) && existing.PeriodEnd.Equal(e.PeriodEnd) {
				return fmt.Errorf(`ERROR: duplicate key value violates unique constraint "uq_payroll_entry_employee_period"`)
			}
		}
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *memEntryRepo) MarkReleased(ctx context.Context, entry payroll.PayrollEntry, actorID uuid.UUID, at time.Time) (bool, error) {
	if r.markReleasedFn != nil {
		return r.markReleasedFn(ctx, entry)
	}
	for i := range r.entries {
		e := &r.entries[i]
		if e.ID != entry.ID || e.Status != payroll.StatusPending {
			continue
		}
		e.Status = payroll.StatusReleased
		e.BaseSalary = entry.BaseSalary
		e.SupplementalPay = entry.SupplementalPay
		e.TotalDeductions = entry.TotalDeductions
		e.NetPay = entry.NetPay
		e.Breakdown = entry.Breakdown
		e.ReleasedBy = &actorID
		e.ReleasedAt = &at
		return true, nil
	}
	return false, nil
}

func (r *memEntryRepo) ArchiveReleased(ctx context.Context, endingBefore *time.Time, at time.Time) (int64, error) {
	var n int64
	for i := range r.entries {
		e := &r.entries[i]
		if e.Status != payroll.StatusReleased {
			continue
		}
		if endingBefore != nil && !e.PeriodEnd.Before(*endingBefore) {
			continue
		}
		e.Status = payroll.StatusArchived
		e.ArchivedAt = &at
		n++
	}
	return n, nil
}

func (r *memEntryRepo) FindAll(ctx context.Context, filter payroll.EntryFilter) ([]payroll.PayrollEntry, error) {
	var out []payroll.PayrollEntry
	for _, e := range r.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Status == "" && e.Status == payroll.StatusArchived {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*payroll.PayrollEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memEntryRepo) countByStatus(status string) int {
	n := 0
	for _, e := range r.entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

type memDeductionRepo struct {
	types []deduction.DeductionType
	items []deduction.Deduction

	createBatchFn func(ctx context.Context, deductions []deduction.Deduction) error
}

func (r *memDeductionRepo) WithTx(tx *sql.Tx) deduction.Repository {
	return r
}

func (r *memDeductionRepo) ListTypes(ctx context.Context) ([]deduction.DeductionType, error) {
	return append([]deduction.DeductionType(nil), r.types...), nil
}

func (r *memDeductionRepo) ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]deduction.Deduction, error) {
	want := make(map[uuid.UUID]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		want[id] = true
	}
	var out []deduction.Deduction
	for _, d := range r.items {
		if d.ArchivedAt == nil && want[d.EmployeeID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDeductionRepo) CreateBatch(ctx context.Context, deductions []deduction.Deduction) error {
	if r.createBatchFn != nil {
		return r.createBatchFn(ctx, deductions)
	}
	r.items = append(r.items, deductions...)
	return nil
}

func (r *memDeductionRepo) ArchiveByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range r.items {
		if want[r.items[i].ID] && r.items[i].ArchivedAt == nil {
			stamp := at
			r.items[i].ArchivedAt = &stamp
			n++
		}
	}
	return n, nil
}

func (r *memDeductionRepo) byID(id uuid.UUID) deduction.Deduction {
	for _, d := range r.items {
		if d.ID == id {
			return d
		}
	}
	return deduction.Deduction{}
}

type memLoanRepo struct {
	loans []loan.Loan
}

func (r *memLoanRepo) WithTx(tx *sql.Tx) loan.Repository {
	return r
}

func (r *memLoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.loans = append(r.loans, *l)
	return nil
}

func (r *memLoanRepo) ListActiveByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]loan.Loan, error) {
	want := make(map[uuid.UUID]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		want[id] = true
	}
	var out []loan.Loan
	for _, l := range r.loans {
		if want[l.EmployeeID] && l.Status == loan.StatusActive && l.ArchivedAt == nil {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLoanRepo) ApplyInstallment(ctx context.Context, l loan.Loan, newBalance int64, at time.Time) (bool, error) {
	for i := range r.loans {
		cur := &r.loans[i]
		if cur.ID != l.ID || cur.Status != loan.StatusActive || cur.Balance != l.Balance {
			continue
		}
		cur.Balance = newBalance
		if newBalance == 0 {
			cur.Status = loan.StatusCompleted
			cur.CompletedAt = &at
			cur.ArchivedAt = &at
		}
		return true, nil
	}
	return false, nil
}

type fakeDirectory struct {
	personnel    []employee.Personnel
	listActiveFn func(ctx context.Context, asOf time.Time) ([]employee.Personnel, error)
}

func (d *fakeDirectory) ListActive(ctx context.Context, asOf time.Time) ([]employee.Personnel, error) {
	if d.listActiveFn != nil {
		return d.listActiveFn(ctx, asOf)
	}
	return d.personnel, nil
}

type fakeSupplemental struct {
	pays []overload.OverloadPay
}

func (s *fakeSupplemental) ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]overload.OverloadPay, error) {
	return s.pays, nil
}

type memOutbox struct {
	events   []kafka.OutboxEvent
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (o *memOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	return o
}

func (o *memOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if o.createFn != nil {
		return o.createFn(ctx, event)
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	o.events = append(o.events, event)
	return nil
}

func (o *memOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return o.events, nil
}

func (o *memOutbox) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (o *memOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

func (o *memOutbox) ofType(eventType string) []kafka.OutboxEvent {
	var out []kafka.OutboxEvent
	for _, e := range o.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type memSink struct {
	messages map[string]notification.Message
	notifyFn func(ctx context.Context, msg notification.Message) error
}

func newMemSink() *memSink {
	return &memSink{messages: map[string]notification.Message{}}
}

func (s *memSink) Notify(ctx context.Context, msg notification.Message) error {
	if s.notifyFn != nil {
		return s.notifyFn(ctx, msg)
	}
	s.messages[msg.DedupeKey] = msg
	return nil
}
