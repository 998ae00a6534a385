package overload

import (
	"context"

	"barangay-payroll/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, p *OverloadPay) error
	ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]OverloadPay, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *OverloadPay) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]OverloadPay, error) {
	ids := make([]string, len(employeeIDs))
	for i, id := range employeeIDs {
		ids[i] = id.String()
	}

	var pays []OverloadPay
	err := r.db.WithContext(ctx).
		Scopes(scope.Unarchived("overload_pays"), scope.EmployeeIn("overload_pays", ids)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&pays).Error
	return pays, err
}
