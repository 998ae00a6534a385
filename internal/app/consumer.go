package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/events"
	"barangay-payroll/internal/messaging/kafka/consumer"
	"barangay-payroll/internal/notification"
	"barangay-payroll/internal/payroll"
	"barangay-payroll/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer archives released deductions and delivers payroll notifications.
func RunConsumer(cfg Config) error {
	logger := zap.L().Named("app.consumer")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	deductionRepo := deduction.NewRepository(gormDB)
	notificationService := notification.NewService(notification.NewRepository(gormDB), logger)
	processor := payroll.NewFollowUpProcessor(deductionRepo, notificationService, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka},
		Topic:          events.PayrollReleaseFollowUpTopic,
		GroupID:        cfg.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumePayrollReleaseFollowUps(ctx, reader, processor, logger, consumer.DefaultRetryPolicy())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
