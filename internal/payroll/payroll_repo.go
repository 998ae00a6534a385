package payroll

import (
	"context"
	"database/sql"
	"time"

	"barangay-payroll/internal/shared/scope"
	"barangay-payroll/internal/shared/txutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryFilter struct {
	Status      string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByPeriod(ctx context.Context, period Period, statuses ...string) ([]PayrollEntry, error)
	FindLatestPendingPeriod(ctx context.Context) (start, end time.Time, found bool, err error)
	HasFinalizedForPeriod(ctx context.Context, period Period) (bool, error)
	DeletePendingForPeriod(ctx context.Context, period Period) (int64, error)
	CreateBatch(ctx context.Context, entries []PayrollEntry) error
	MarkReleased(ctx context.Context, entry PayrollEntry, actorID uuid.UUID, at time.Time) (bool, error)
	ArchiveReleased(ctx context.Context, endingBefore *time.Time, at time.Time) (int64, error)
	FindAll(ctx context.Context, filter EntryFilter) ([]PayrollEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollEntry, error)
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

func (r *repository) FindByPeriod(ctx context.Context, period Period, statuses ...string) ([]PayrollEntry, error) {
	db := r.conn(ctx).Scopes(scope.Period(period.Start, period.End))
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}

	var entries []PayrollEntry
	err := db.
		Order("employee_name ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) FindLatestPendingPeriod(ctx context.Context) (time.Time, time.Time, bool, error) {
	var row struct {
		PeriodStart time.Time
		PeriodEnd   time.Time
	}
	res := r.conn(ctx).
		Model(&PayrollEntry{}).
		Select("period_start, period_end").
		Where("status = ?", StatusPending).
		Order("period_end DESC").
		Order("period_start DESC").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return time.Time{}, time.Time{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	return row.PeriodStart, row.PeriodEnd, true, nil
}

func (r *repository) HasFinalizedForPeriod(ctx context.Context, period Period) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&PayrollEntry{}).
		Scopes(scope.Period(period.Start, period.End)).
		Where("status IN ?", []string{StatusReleased, StatusArchived}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) DeletePendingForPeriod(ctx context.Context, period Period) (int64, error) {
	res := r.conn(ctx).
		Scopes(scope.Period(period.Start, period.End)).
		Where("status = ?", StatusPending).
		Delete(&PayrollEntry{})
	return res.RowsAffected, res.Error
}

func (r *repository) CreateBatch(ctx context.Context, entries []PayrollEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.conn(ctx).CreateInBatches(entries, 200).Error
}

// MarkReleased writes the recomputed figures and flips the entry to RELEASED only while it
// is still PENDING. false means another release already took it.
func (r *repository) MarkReleased(ctx context.Context, entry PayrollEntry, actorID uuid.UUID, at time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&PayrollEntry{}).
		Where("id = ?", entry.ID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":           StatusReleased,
			"base_salary":      entry.BaseSalary,
			"supplemental_pay": entry.SupplementalPay,
			"total_deductions": entry.TotalDeductions,
			"net_pay":          entry.NetPay,
			"breakdown":        entry.Breakdown,
			"released_by":      actorID,
			"released_at":      at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ArchiveReleased moves RELEASED entries to ARCHIVED; with endingBefore set only entries
// whose period ends before that date are moved.
func (r *repository) ArchiveReleased(ctx context.Context, endingBefore *time.Time, at time.Time) (int64, error) {
	db := r.conn(ctx).
		Model(&PayrollEntry{}).
		Where("status = ?", StatusReleased)
	if endingBefore != nil {
		db = db.Where("period_end < ?", *endingBefore)
	}

	res := db.Updates(map[string]any{
		"status":      StatusArchived,
		"archived_at": at,
		"updated_at":  at,
	})
	return res.RowsAffected, res.Error
}

func (r *repository) FindAll(ctx context.Context, filter EntryFilter) ([]PayrollEntry, error) {
	db := r.conn(ctx).Model(&PayrollEntry{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	} else {
		db = db.Where("status IN ?", []string{StatusPending, StatusReleased})
	}
	if filter.PeriodStart != nil {
		db = db.Where("period_start >= ?", *filter.PeriodStart)
	}
	if filter.PeriodEnd != nil {
		db = db.Where("period_end <= ?", *filter.PeriodEnd)
	}

	var entries []PayrollEntry
	err := db.
		Order("period_end DESC").
		Order("employee_name ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*PayrollEntry, error) {
	var entry PayrollEntry
	if err := r.conn(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
