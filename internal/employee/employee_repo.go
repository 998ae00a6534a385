package employee

import (
	"context"
	"time"

	"barangay-payroll/internal/employeesalary"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, empl *Employee) error
	FindActive(ctx context.Context) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	if empl.ID == uuid.Nil {
		empl.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindActive(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

// Directory is the read-only personnel view payroll consumes.
type Directory struct {
	employees Repository
	salaries  employeesalary.Repository
}

func NewDirectory(employees Repository, salaries employeesalary.Repository) *Directory {
	return &Directory{employees: employees, salaries: salaries}
}

// ListActive returns every active employee, ordered by name, with the salary basis
// effective on asOf resolved.
func (d *Directory) ListActive(ctx context.Context, asOf time.Time) ([]Personnel, error) {
	employees, err := d.employees.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}

	salaries, err := d.salaries.FindEffective(ctx, ids, asOf)
	if err != nil {
		return nil, err
	}

	result := make([]Personnel, 0, len(employees))
	for _, e := range employees {
		p := Personnel{ID: e.ID, FullName: e.FullName}
		if s, ok := salaries[e.ID]; ok {
			amount := s.BaseSalary
			p.SalaryBasis = &amount
		}
		result = append(result, p)
	}
	return result, nil
}
