package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barangay-payroll/internal/shared/txutil"

	"gorm.io/gorm"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// OutboxStatusDead rows are kept for inspection and never picked up again.
	OutboxStatusDead = "dead"
)

const (
	MaxOutboxAttempts = 10

	baseRetryDelay  = 15 * time.Second
	maxRetryDelay   = 10 * time.Minute
	maxErrorMessage = 500
)

// OutboxRecord is a row of outbox_events.
type OutboxRecord struct {
	ID            string     `gorm:"type:uuid;primaryKey"`
	RequestID     string     `gorm:"type:varchar(64)"`
	AggregateType string     `gorm:"type:varchar(50);not null"`
	AggregateID   string     `gorm:"type:uuid;not null;index"`
	EventType     string     `gorm:"type:varchar(100);not null"`
	Topic         string     `gorm:"type:varchar(150);not null"`
	Payload       []byte     `gorm:"type:bytea;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_outbox_status_retry"`
	RetryCount    int        `gorm:"not null;default:0"`
	ErrorMessage  *string    `gorm:"type:varchar(500)"`
	NextRetryAt   *time.Time `gorm:"index:idx_outbox_status_retry"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

func (OutboxRecord) TableName() string {
	return "outbox_events"
}

// OutboxEvent is what producers enqueue and the relay publishes.
type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	RetryCount    int
	NextRetryAt   time.Time
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	db  *gorm.DB
	tx  *sql.Tx
	now func() time.Time
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db, now: time.Now}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx, now: r.now}
}

// Create must run on the business transaction (WithTx) so the event commits with the change it announces.
func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	rec := OutboxRecord{
		ID:            event.ID,
		RequestID:     event.RequestID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Topic:         event.Topic,
		Payload:       event.Payload,
		Status:        event.Status,
	}
	return txutil.Bind(ctx, r.db, r.tx).Create(&rec).Error
}

// ListPending returns due pending/failed rows, oldest first.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var recs []OutboxRecord
	err := txutil.Bind(ctx, r.db, r.tx).
		Where("status IN ?", []string{OutboxStatusPending, OutboxStatusFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", r.now().UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	events := make([]OutboxEvent, 0, len(recs))
	for _, rec := range recs {
		e := OutboxEvent{
			ID:            rec.ID,
			RequestID:     rec.RequestID,
			AggregateType: rec.AggregateType,
			AggregateID:   rec.AggregateID,
			EventType:     rec.EventType,
			Topic:         rec.Topic,
			Payload:       rec.Payload,
			Status:        rec.Status,
			RetryCount:    rec.RetryCount,
			NextRetryAt:   rec.CreatedAt,
		}
		if rec.NextRetryAt != nil {
			e.NextRetryAt = *rec.NextRetryAt
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	now := r.now().UTC()
	return txutil.Bind(ctx, r.db, r.tx).
		Model(&OutboxRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        OutboxStatusSent,
			"processed_at":  now,
			"error_message": nil,
			"updated_at":    now,
		}).Error
}

// MarkFailed schedules the next attempt with RetryDelay, or parks the row as dead once
// MaxOutboxAttempts is reached.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if len(reason) > maxErrorMessage {
		reason = reason[:maxErrorMessage]
	}

	return txutil.Bind(ctx, r.db, r.tx).Transaction(func(tx *gorm.DB) error {
		var rec OutboxRecord
		if err := tx.Select("id", "retry_count").Where("id = ?", id).First(&rec).Error; err != nil {
			return err
		}

		now := r.now().UTC()
		attempts := rec.RetryCount + 1
		updates := map[string]any{
			"retry_count":   attempts,
			"error_message": reason,
			"updated_at":    now,
		}
		if attempts >= MaxOutboxAttempts {
			updates["status"] = OutboxStatusDead
			updates["next_retry_at"] = nil
		} else {
			updates["status"] = OutboxStatusFailed
			updates["next_retry_at"] = now.Add(RetryDelay(attempts))
		}

		return tx.Model(&OutboxRecord{}).Where("id = ?", id).Updates(updates).Error
	})
}

// RetryDelay doubles from 15s per failed attempt, capped at 10m.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := baseRetryDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.AggregateID == "" {
		return errors.New("outbox aggregate id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if event.EventType == "" {
		return errors.New("outbox event type is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
