package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sink delivers one message. Delivery is keyed by Message.DedupeKey, so replays are harmless.
type Sink interface {
	Notify(ctx context.Context, msg Message) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Sink {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Notify(ctx context.Context, msg Message) error {
	if msg.DedupeKey == "" {
		return errors.New("notification dedupe key is required")
	}

	created, err := s.repo.CreateOnce(ctx, &Notification{
		RecipientID:   msg.RecipientID,
		RecipientKind: msg.RecipientKind,
		Type:          msg.Type,
		Title:         msg.Title,
		Body:          msg.Body,
		DedupeKey:     msg.DedupeKey,
	})
	if err != nil {
		s.logger.Error("store notification failed",
			zap.String("dedupe_key", msg.DedupeKey),
			zap.String("recipient_id", msg.RecipientID.String()),
			zap.Error(err),
		)
		return err
	}

	if !created {
		s.logger.Debug("notification already delivered", zap.String("dedupe_key", msg.DedupeKey))
		return nil
	}

	s.logger.Info("notification delivered",
		zap.String("type", msg.Type),
		zap.String("recipient_kind", msg.RecipientKind),
		zap.String("recipient_id", msg.RecipientID.String()),
	)
	return nil
}
