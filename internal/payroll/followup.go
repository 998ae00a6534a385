package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barangay-payroll/internal/events"
	"barangay-payroll/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedEvent marks a payload that can never be processed; consumers should not retry it.
var ErrMalformedEvent = errors.New("malformed payroll follow-up event")

// FollowUpProcessor applies the side effects a release recorded in the outbox.
// Every handler is safe to replay.
//
//go:generate mockgen -source=followup.go -destination=mock/followup_mock.go -package=mock
type FollowUpProcessor interface {
	Handle(ctx context.Context, eventType string, payload []byte) error
}

type followUpProcessor struct {
	archiver DeductionArchiver
	sink     notification.Sink
	now      func() time.Time
	logger   *zap.Logger
}

func NewFollowUpProcessor(archiver DeductionArchiver, sink notification.Sink, logger ...*zap.Logger) FollowUpProcessor {
	l := zap.L().Named("payroll.followup")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.followup")
	}
	return &followUpProcessor{archiver: archiver, sink: sink, now: time.Now, logger: l}
}

func (p *followUpProcessor) Handle(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case events.PayrollDeductionsArchiveRequested:
		return p.archiveDeductions(ctx, payload)
	case events.PayrollNotificationRequested:
		return p.notify(ctx, payload)
	default:
		p.logger.Warn("unknown payroll follow-up event skipped", zap.String("event_type", eventType))
		return nil
	}
}

func (p *followUpProcessor) archiveDeductions(ctx context.Context, payload []byte) error {
	var evt events.PayrollDeductionsArchiveRequestedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: decode deductions archive event: %v", ErrMalformedEvent, err)
	}

	ids := make([]uuid.UUID, 0, len(evt.DeductionIDs))
	for _, raw := range evt.DeductionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			p.logger.Warn("invalid deduction id in archive event", zap.String("deduction_id", raw))
			continue
		}
		ids = append(ids, id)
	}

	at := evt.ReleasedAt
	if at.IsZero() {
		at = p.now()
	}

	n, err := p.archiver.ArchiveByIDs(ctx, ids, at)
	if err != nil {
		p.logger.Error("archive released deductions failed",
			zap.String("employee_id", evt.EmployeeID),
			zap.Int("requested", len(ids)),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("released deductions archived",
		zap.String("employee_id", evt.EmployeeID),
		zap.Int("requested", len(ids)),
		zap.Int64("archived", n),
	)
	return nil
}

func (p *followUpProcessor) notify(ctx context.Context, payload []byte) error {
	var evt events.PayrollNotificationRequestedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: decode notification event: %v", ErrMalformedEvent, err)
	}

	recipient, err := uuid.Parse(evt.RecipientID)
	if err != nil {
		p.logger.Warn("notification without valid recipient skipped", zap.String("dedupe_key", evt.DedupeKey))
		return nil
	}

	if err := p.sink.Notify(ctx, notification.Message{
		DedupeKey:     evt.DedupeKey,
		RecipientID:   recipient,
		RecipientKind: evt.RecipientKind,
		Type:          evt.Kind,
		Title:         evt.Title,
		Body:          evt.Body,
	}); err != nil {
		p.logger.Error("payroll notification failed",
			zap.String("dedupe_key", evt.DedupeKey),
			zap.String("recipient_id", evt.RecipientID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
