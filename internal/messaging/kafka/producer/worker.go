package producer

import (
	"context"
	"time"

	"barangay-payroll/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	batchSize = 50
	// maxBatchesPerTick bounds a catch-up drain so shutdown is never held up for long.
	maxBatchesPerTick = 20
)

// BatchResult counts what one pass over the outbox did.
type BatchResult struct {
	Listed int
	Sent   int
	Failed int
}

// ProcessOutboxEvents relays outbox rows to Kafka until ctx is done. Each tick drains full
// batches back to back so a release of many employees does not wait pollInterval per batch.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox relay started", zap.Duration("poll_interval", pollInterval))

	for {
		drain(ctx, repo, writer, log)

		select {
		case <-ctx.Done():
			log.Info("outbox relay stopped")
			return
		case <-ticker.C:
		}
	}
}

func drain(ctx context.Context, repo kafka.OutboxRepository, writer MessageWriter, log *zap.Logger) {
	for i := 0; i < maxBatchesPerTick && ctx.Err() == nil; i++ {
		res, err := ProcessPendingEvents(ctx, repo, writer, log)
		if err != nil {
			log.Error("relay outbox batch failed", zap.Error(err))
			return
		}
		if res.Listed < batchSize || res.Sent == 0 {
			return
		}
	}
}

// ProcessPendingEvents publishes one batch. A publish failure is recorded on the row and
// does not stop the rest of the batch.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (BatchResult, error) {
	pending, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Listed: len(pending)}
	if res.Listed == 0 {
		return res, nil
	}

	for _, event := range pending {
		if err := publishEvent(ctx, writer, event); err != nil {
			res.Failed++
			logger.Warn("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Int("attempt", event.RetryCount+1),
				zap.Bool("final_attempt", event.RetryCount+1 >= kafka.MaxOutboxAttempts),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("record outbox failure failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		// Published but not marked: the row is sent again next pass and consumers dedupe it.
		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		res.Sent++
	}

	logger.Info("outbox batch relayed",
		zap.Int("listed", res.Listed),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
