package kafka

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&OutboxRecord{}))
	return db
}

func pendingEvent(aggregateID string) OutboxEvent {
	return OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "payroll_entry",
		AggregateID:   aggregateID,
		EventType:     "payroll_notification_requested",
		Topic:         "barangay.payroll.release.followup.v1",
		Payload:       []byte(`{"event_type":"payroll_notification_requested"}`),
		Status:        OutboxStatusPending,
	}
}

func TestOutboxRepository(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)

	newRepo := func(t *testing.T) (*outboxRepository, *gorm.DB) {
		db := openOutboxDB(t)
		repo := NewOutboxRepository(db).(*outboxRepository)
		repo.now = func() time.Time { return clock }
		return repo, db
	}

	t.Run("create rejects invalid events", func(t *testing.T) {
		repo, _ := newRepo(t)
		evt := pendingEvent(uuid.NewString())
		evt.Payload = nil

		assert.Error(t, repo.Create(ctx, evt))
	})

	t.Run("list pending skips sent and not yet due rows", func(t *testing.T) {
		repo, db := newRepo(t)
		first := pendingEvent(uuid.NewString())
		second := pendingEvent(uuid.NewString())
		sent := pendingEvent(uuid.NewString())
		for _, e := range []OutboxEvent{first, second, sent} {
			require.NoError(t, repo.Create(ctx, e))
		}
		require.NoError(t, db.Model(&OutboxRecord{}).Where("id = ?", first.ID).Update("created_at", clock.Add(-time.Hour)).Error)
		require.NoError(t, db.Model(&OutboxRecord{}).Where("id = ?", second.ID).Update("created_at", clock.Add(-30*time.Minute)).Error)
		require.NoError(t, repo.MarkSent(ctx, sent.ID))

		later := clock.Add(time.Minute)
		require.NoError(t, db.Model(&OutboxRecord{}).Where("id = ?", second.ID).
			Updates(map[string]any{"status": OutboxStatusFailed, "next_retry_at": later}).Error)

		got, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, first.Payload, got[0].Payload)

		repo.now = func() time.Time { return later }
		got, err = repo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)
	})

	t.Run("mark sent clears error", func(t *testing.T) {
		repo, db := newRepo(t)
		evt := pendingEvent(uuid.NewString())
		require.NoError(t, repo.Create(ctx, evt))
		require.NoError(t, repo.MarkFailed(ctx, evt.ID, "broker unavailable"))

		require.NoError(t, repo.MarkSent(ctx, evt.ID))

		var rec OutboxRecord
		require.NoError(t, db.First(&rec, "id = ?", evt.ID).Error)
		assert.Equal(t, OutboxStatusSent, rec.Status)
		assert.Nil(t, rec.ErrorMessage)
		assert.NotNil(t, rec.ProcessedAt)
	})

	t.Run("mark failed backs off then parks the row", func(t *testing.T) {
		repo, db := newRepo(t)
		evt := pendingEvent(uuid.NewString())
		require.NoError(t, repo.Create(ctx, evt))

		require.NoError(t, repo.MarkFailed(ctx, evt.ID, strings.Repeat("x", 600)))

		var rec OutboxRecord
		require.NoError(t, db.First(&rec, "id = ?", evt.ID).Error)
		assert.Equal(t, OutboxStatusFailed, rec.Status)
		assert.Equal(t, 1, rec.RetryCount)
		require.NotNil(t, rec.ErrorMessage)
		assert.Len(t, *rec.ErrorMessage, 500)
		require.NotNil(t, rec.NextRetryAt)
		assert.True(t, rec.NextRetryAt.Equal(clock.Add(15*time.Second)))

		for i := 1; i < MaxOutboxAttempts; i++ {
			require.NoError(t, repo.MarkFailed(ctx, evt.ID, "broker unavailable"))
		}

		var parked OutboxRecord
		require.NoError(t, db.First(&parked, "id = ?", evt.ID).Error)
		assert.Equal(t, OutboxStatusDead, parked.Status)
		assert.Equal(t, MaxOutboxAttempts, parked.RetryCount)
		assert.Nil(t, parked.NextRetryAt)

		repo.now = func() time.Time { return clock.Add(24 * time.Hour) }
		got, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("mark failed on unknown id", func(t *testing.T) {
		repo, _ := newRepo(t)
		assert.ErrorIs(t, repo.MarkFailed(ctx, uuid.NewString(), "x"), gorm.ErrRecordNotFound)
	})
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 15*time.Second, RetryDelay(0))
	assert.Equal(t, 15*time.Second, RetryDelay(1))
	assert.Equal(t, 30*time.Second, RetryDelay(2))
	assert.Equal(t, 2*time.Minute, RetryDelay(4))
	assert.Equal(t, 10*time.Minute, RetryDelay(7))
	assert.Equal(t, 10*time.Minute, RetryDelay(50))
}
