package notification_test

import (
	"context"
	"testing"

	"barangay-payroll/internal/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupNotificationService(t *testing.T) (notification.Sink, notification.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&notification.Notification{}))

	repo := notification.NewRepository(db)
	return notification.NewService(repo), repo
}

func TestService_Notify(t *testing.T) {
	ctx := context.Background()
	recipient := uuid.New()

	t.Run("delivered once per dedupe key", func(t *testing.T) {
		sink, repo := setupNotificationService(t)
		msg := notification.Message{
			DedupeKey:     "payroll-released:" + uuid.NewString(),
			RecipientID:   recipient,
			RecipientKind: notification.RecipientEmployee,
			Type:          notification.TypePayrollReleased,
			Title:         "Payroll released",
			Body:          "Your payroll for 2026-03-01 to 2026-03-15 has been released.",
		}

		require.NoError(t, sink.Notify(ctx, msg))
		require.NoError(t, sink.Notify(ctx, msg))

		items, err := repo.ListByRecipient(ctx, recipient, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Payroll released", items[0].Title)
		assert.Nil(t, items[0].ReadAt)
	})

	t.Run("dedupe key is required", func(t *testing.T) {
		sink, _ := setupNotificationService(t)
		assert.Error(t, sink.Notify(ctx, notification.Message{RecipientID: recipient}))
	})
}
