package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"barangay-payroll/internal/payroll"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type RetryPolicy struct {
	Attempts   int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Backoff: time.Second, MaxBackoff: 30 * time.Second}
}

// ConsumePayrollReleaseFollowUps drains release follow-up events. A message is committed
// only once it was handled; after the retry budget is spent it is left uncommitted so the
// group redelivers it after a restart or rebalance.
func ConsumePayrollReleaseFollowUps(
	ctx context.Context,
	reader MessageReader,
	processor payroll.FollowUpProcessor,
	logger *zap.Logger,
	policy RetryPolicy,
) {
	log := logger.Named("kafka.consumer.payroll_release_followup")
	log.Info("payroll release follow-up consumer started")

	if policy.Attempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll release follow-up consumer stopped")
				return
			}
			log.Error("fetch payroll follow-up message failed", zap.Error(err))
			continue
		}

		eventType := messageEventType(msg)
		err = handleWithRetry(ctx, processor, eventType, msg.Value, policy, log)
		if err != nil {
			if errors.Is(err, payroll.ErrMalformedEvent) {
				log.Error("malformed payroll follow-up event dropped",
					zap.String("event_type", eventType),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			if ctx.Err() != nil {
				log.Info("payroll release follow-up consumer stopped")
				return
			}
			log.Error("payroll follow-up event failed, left for redelivery",
				zap.String("event_type", eventType),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll follow-up message failed", zap.Error(err))
			continue
		}

		log.Debug("payroll follow-up event handled",
			zap.String("event_type", eventType),
			zap.Int64("offset", msg.Offset),
		)
	}
}

func handleWithRetry(
	ctx context.Context,
	processor payroll.FollowUpProcessor,
	eventType string,
	payload []byte,
	policy RetryPolicy,
	log *zap.Logger,
) error {
	backoff := policy.Backoff
	var err error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err = processor.Handle(ctx, eventType, payload)
		if err == nil || errors.Is(err, payroll.ErrMalformedEvent) {
			return err
		}
		if attempt == policy.Attempts {
			break
		}

		log.Warn("payroll follow-up attempt failed",
			zap.String("event_type", eventType),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return err
}

// messageEventType reads the event_type header set by the outbox publisher, falling back
// to the payload.
func messageEventType(msg kafkago.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}

	var envelope struct {
		EventType string `json:"event_type"`
	}
	_ = json.Unmarshal(msg.Value, &envelope)
	return envelope.EventType
}
