package payroll

import (
	"context"
	"time"

	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/overload"

	"github.com/google/uuid"
)

// Collaborators owned by other features. Deduction and loan stores take part in payroll
// transactions, so the service uses their repositories (deduction.Repository,
// loan.Repository) directly.

type PersonnelDirectory interface {
	ListActive(ctx context.Context, asOf time.Time) ([]employee.Personnel, error)
}

type SupplementalPayStore interface {
	ListUnarchivedByEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]overload.OverloadPay, error)
}

type DeductionArchiver interface {
	ArchiveByIDs(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
}
