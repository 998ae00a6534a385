package notification

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateOnce(ctx context.Context, n *Notification) (bool, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notification, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateOnce inserts n unless a row with the same dedupe key exists; it reports whether a row was written.
func (r *repository) CreateOnce(ctx context.Context, n *Notification) (bool, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(n)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var items []Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
