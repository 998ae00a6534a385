package deduction

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
	ListTypes(ctx context.Context) ([]DeductionType, error)
	ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]Deduction, error)
	CreateBatch(ctx context.Context, deductions []Deduction) error
	ArchiveByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
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

// ListTypes returns every deduction type, inactive ones included.
func (r *repository) ListTypes(ctx context.Context) ([]DeductionType, error) {
	var types []DeductionType
	err := r.conn(ctx).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]Deduction, error) {
	var deductions []Deduction
	err := r.conn(ctx).
		Scopes(scope.Unarchived("deductions"), scope.EmployeeIn("deductions", uuidStrings(employeeIDs))).
		Order("applied_at ASC").
		Order("id ASC").
		Find(&deductions).Error
	return deductions, err
}

func (r *repository) CreateBatch(ctx context.Context, deductions []Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	for i := range deductions {
		if deductions[i].ID == uuid.Nil {
			deductions[i].ID = uuid.New()
		}
	}
	return r.conn(ctx).Omit("DeductionType").CreateInBatches(deductions, 200).Error
}

// ArchiveByIDs stamps archived_at on the rows that are not archived yet, so replays are no-ops.
func (r *repository) ArchiveByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(ctx).
		Model(&Deduction{}).
		Where("id IN ?", uuidStrings(ids)).
		Where("archived_at IS NULL").
		Updates(map[string]any{"archived_at": at, "updated_at": at})
	return res.RowsAffected, res.Error
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
