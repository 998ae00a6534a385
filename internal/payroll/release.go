package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"barangay-payroll/internal/bootstrap"
	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/events"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/messaging/kafka"
	"barangay-payroll/internal/notification"
	payrollerrors "barangay-payroll/internal/payroll/errors"
	"barangay-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const aggregateType = "payroll_entry"

// releasedEntry is one entry recomputed for release together with what it consumed.
type releasedEntry struct {
	entry      PayrollEntry
	deductions DeductionSelection
	loans      LoanPlan
}

// Release flips the target period's PENDING entries to RELEASED in one transaction.
// Deduction archival and notifications are recorded in the outbox and applied by the
// follow-up consumer after commit.
func (s *service) Release(
	ctx context.Context,
	actorID string,
	req ReleaseRequest,
) (ReleaseResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return ReleaseResponse{}, payrollerrors.ErrInvalidActorID
	}

	s.logger.Debug("release payroll requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("period_start", req.PeriodStart),
		zap.String("period_end", req.PeriodEnd),
		zap.Bool("include_attendance", req.IncludeAttendanceDeductions),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("release payroll begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ReleaseResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := s.releaseTarget(ctx, qtx, req)
	if err != nil {
		return ReleaseResponse{}, err
	}
	log := s.logger.With(zap.String("request_id", rid), zap.String("period", period.String()))

	entries, err := qtx.FindByPeriod(ctx, period, StatusPending)
	if err != nil {
		log.Error("release payroll load pending entries failed", zap.Error(err))
		return ReleaseResponse{}, err
	}
	if len(entries) == 0 {
		log.Warn("release payroll no pending entries")
		return ReleaseResponse{}, payrollerrors.ErrNoPendingEntries
	}

	now := s.now()
	released, missing, loansByID, err := s.recompute(ctx, tx, period, entries, req.IncludeAttendanceDeductions, now)
	if err != nil {
		log.Error("release payroll recompute failed", zap.Error(err))
		return ReleaseResponse{}, err
	}

	if _, err := s.sweeper.Sweep(ctx, qtx, &period.Start, now); err != nil {
		return ReleaseResponse{}, fmt.Errorf("sweep released entries: %w", err)
	}

	if err := s.deductions.WithTx(tx).CreateBatch(ctx, missing); err != nil {
		log.Error("release payroll apply mandatory deductions failed", zap.Error(err))
		return ReleaseResponse{}, fmt.Errorf("apply mandatory deductions: %w", err)
	}

	for _, r := range released {
		ok, err := qtx.MarkReleased(ctx, r.entry, actor, now)
		if err != nil {
			log.Error("release payroll mark released failed", zap.String("entry_id", r.entry.ID.String()), zap.Error(err))
			return ReleaseResponse{}, fmt.Errorf("mark entry released: %w", err)
		}
		if !ok {
			log.Warn("release payroll entry no longer pending", zap.String("entry_id", r.entry.ID.String()))
			return ReleaseResponse{}, payrollerrors.ErrReleaseConflict
		}
	}

	if err := s.amortize(ctx, s.loans.WithTx(tx), released, loansByID, now); err != nil {
		log.Warn("release payroll amortize loans failed", zap.Error(err))
		return ReleaseResponse{}, err
	}

	if err := s.enqueueFollowUps(ctx, s.outbox.WithTx(tx), actor, period, released, now); err != nil {
		log.Error("release payroll enqueue follow-ups failed", zap.Error(err))
		return ReleaseResponse{}, fmt.Errorf("enqueue release follow-ups: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("release payroll commit failed", zap.Error(err))
		return ReleaseResponse{}, err
	}

	s.invalidateSummaries(ctx)

	var net int64
	for _, r := range released {
		net += r.entry.NetPay
	}
	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "PAYROLL_RELEASED",
		ActorID: actorID,
		Message: fmt.Sprintf("payroll %s released", period.String()),
		Meta: map[string]any{
			"released":           len(released),
			"net_pay_total":      net,
			"include_attendance": req.IncludeAttendanceDeductions,
		},
	})

	log.Info("payroll released", zap.Int("released", len(released)), zap.Int64("net_pay_total", net))

	return ReleaseResponse{
		ReleasedCount: len(released),
		Period:        toPeriodResponse(period),
	}, nil
}

// releaseTarget is the explicit period, or the latest period that still has PENDING entries.
func (s *service) releaseTarget(ctx context.Context, qtx Repository, req ReleaseRequest) (Period, error) {
	if req.PeriodStart != "" || req.PeriodEnd != "" {
		return s.resolvePeriod(req.PeriodStart, req.PeriodEnd)
	}

	start, end, found, err := qtx.FindLatestPendingPeriod(ctx)
	if err != nil {
		return Period{}, err
	}
	if !found {
		return Period{}, payrollerrors.ErrNoPendingEntries
	}
	return NewPeriod(start, end, s.loc)
}

// recompute rebuilds every entry from live deductions and loans, keeping the earnings
// frozen at generation.
func (s *service) recompute(
	ctx context.Context,
	tx *sql.Tx,
	period Period,
	entries []PayrollEntry,
	includeAttendance bool,
	now time.Time,
) ([]releasedEntry, []deduction.Deduction, map[uuid.UUID]loan.Loan, error) {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.EmployeeID
	}

	dtx := s.deductions.WithTx(tx)
	types, err := dtx.ListTypes(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list deduction types: %w", err)
	}
	instances, err := dtx.ListUnarchivedByEmployees(ctx, ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list deductions: %w", err)
	}
	loans, err := s.loans.WithTx(tx).ListActiveByEmployees(ctx, ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list loans: %w", err)
	}

	catalog := NewCatalog(types)
	deductionsBy := groupDeductions(instances)
	loansBy := groupLoans(loans)
	loansByID := make(map[uuid.UUID]loan.Loan, len(loans))
	for _, l := range loans {
		loansByID[l.ID] = l
	}

	var missing []deduction.Deduction
	released := make([]releasedEntry, 0, len(entries))
	for _, e := range entries {
		earnings := earningsFromSnapshot(e.Breakdown.Data())
		sel, add := s.selectWithReconcile(period, catalog, e.EmployeeID, deductionsBy[e.EmployeeID], earnings.BaseSalary, now)
		missing = append(missing, add...)
		plan := PlanInstallments(loansBy[e.EmployeeID], period.Factor())

		rebuilt := BuildEntry(EntryInput{
			Period:            period,
			Personnel:         employee.Personnel{ID: e.EmployeeID, FullName: e.EmployeeName},
			Earnings:          earnings,
			Deductions:        sel,
			IncludeAttendance: includeAttendance,
			Loans:             plan,
			Phase:             PhaseRelease,
			ComputedAt:        now,
		})
		applyRecompute(&e, rebuilt)
		e.Status = StatusReleased
		e.ReleasedAt = &now

		released = append(released, releasedEntry{entry: e, deductions: sel, loans: plan})
	}
	return released, missing, loansByID, nil
}

// amortize applies each planned installment with a balance-guarded update.
func (s *service) amortize(
	ctx context.Context,
	ltx loan.Repository,
	released []releasedEntry,
	loansByID map[uuid.UUID]loan.Loan,
	now time.Time,
) error {
	for _, r := range released {
		for _, line := range r.loans.Lines {
			l, ok := loansByID[line.LoanID]
			if !ok {
				continue
			}
			applied, err := ltx.ApplyInstallment(ctx, l, line.BalanceAfter, now)
			if err != nil {
				return fmt.Errorf("apply loan installment: %w", err)
			}
			if !applied {
				s.logger.Warn("loan balance changed during release", zap.String("loan_id", l.ID.String()))
				return payrollerrors.ErrReleaseConflict
			}
			if line.Completes() {
				s.logger.Info("loan completed", zap.String("loan_id", l.ID.String()), zap.String("employee_id", l.EmployeeID.String()))
			}
		}
	}
	return nil
}

func (s *service) enqueueFollowUps(
	ctx context.Context,
	otx kafka.OutboxRepository,
	actor uuid.UUID,
	period Period,
	released []releasedEntry,
	now time.Time,
) error {
	start, end := period.Start.Format(dateLayout), period.End.Format(dateLayout)

	var total int64
	for _, r := range released {
		total += r.entry.NetPay
		entryID := r.entry.ID.String()

		ids := make([]string, 0, len(r.deductions.Consumed)+len(r.deductions.AttendanceIDs))
		for _, id := range r.deductions.Consumed {
			ids = append(ids, id.String())
		}
		for _, id := range r.deductions.AttendanceIDs {
			ids = append(ids, id.String())
		}
		if len(ids) > 0 {
			if err := s.enqueue(ctx, otx, entryID, events.PayrollDeductionsArchiveRequested, events.PayrollDeductionsArchiveRequestedEvent{
				EventType:    events.PayrollDeductionsArchiveRequested,
				EmployeeID:   r.entry.EmployeeID.String(),
				PeriodStart:  start,
				PeriodEnd:    end,
				DeductionIDs: ids,
				ReleasedAt:   now,
			}); err != nil {
				return err
			}
		}

		if err := s.enqueue(ctx, otx, entryID, events.PayrollNotificationRequested, events.PayrollNotificationRequestedEvent{
			EventType:     events.PayrollNotificationRequested,
			DedupeKey:     "payroll-released:" + entryID,
			RecipientID:   r.entry.EmployeeID.String(),
			RecipientKind: notification.RecipientEmployee,
			Kind:          notification.TypePayrollReleased,
			Title:         "Payroll released",
			Body: fmt.Sprintf("Your payroll for %s to %s has been released. Net pay: PHP %s.",
				start, end, formatCentavos(r.entry.NetPay)),
			PeriodStart: start,
			PeriodEnd:   end,
			OccurredAt:  now,
		}); err != nil {
			return err
		}
	}

	return s.enqueue(ctx, otx, actor.String(), events.PayrollNotificationRequested, events.PayrollNotificationRequestedEvent{
		EventType:     events.PayrollNotificationRequested,
		DedupeKey:     fmt.Sprintf("payroll-release-summary:%s:%s", start, end),
		RecipientID:   actor.String(),
		RecipientKind: notification.RecipientAdmin,
		Kind:          notification.TypeReleaseSummary,
		Title:         "Payroll release completed",
		Body: fmt.Sprintf("Released payroll for %d employees covering %s to %s. Total net pay: PHP %s.",
			len(released), start, end, formatCentavos(total)),
		PeriodStart: start,
		PeriodEnd:   end,
		OccurredAt:  now,
	})
}

func (s *service) enqueue(ctx context.Context, otx kafka.OutboxRepository, aggregateID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return otx.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         events.PayrollReleaseFollowUpTopic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
}

// formatCentavos renders 1950000 as "19500.00".
func formatCentavos(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
