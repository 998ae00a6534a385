package loan

import (
	"context"
	"database/sql"
	"time"

	"barangay-payroll/internal/shared/scope"
	"barangay-payroll/internal/shared/txutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Loan) error
	ListActiveByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]Loan, error)
	ApplyInstallment(ctx context.Context, l Loan, newBalance int64, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return txutil.Bind(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, l *Loan) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return r.conn(ctx).Create(l).Error
}

func (r *repository) ListActiveByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]Loan, error) {
	ids := make([]string, len(employeeIDs))
	for i, id := range employeeIDs {
		ids[i] = id.String()
	}

	var loans []Loan
	err := r.conn(ctx).
		Scopes(scope.Unarchived("loans"), scope.EmployeeIn("loans", ids)).
		Where("loans.status = ?", StatusActive).
		Order("created_at ASC").
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}

// ApplyInstallment moves the balance from l.Balance to newBalance only if the row still
// holds l.Balance and is ACTIVE. It reports false when another writer got there first.
// A zero balance completes and archives the loan.
func (r *repository) ApplyInstallment(ctx context.Context, l Loan, newBalance int64, at time.Time) (bool, error) {
	updates := map[string]any{
		"balance":    newBalance,
		"updated_at": at,
	}
	if newBalance == 0 {
		updates["status"] = StatusCompleted
		updates["completed_at"] = at
		updates["archived_at"] = at
	}

	res := r.conn(ctx).
		Model(&Loan{}).
		Where("id = ?", l.ID).
		Where("status = ?", StatusActive).
		Where("balance = ?", l.Balance).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
