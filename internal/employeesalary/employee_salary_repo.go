package employeesalary

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, salary *EmployeeSalary) error
	FindEffective(ctx context.Context, employeeIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]EmployeeSalary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, salary *EmployeeSalary) error {
	if salary.ID == uuid.Nil {
		salary.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(salary).Error
}

// FindEffective returns, per employee, the latest salary assignment effective on or before asOf.
// Employees without one are absent from the map.
func (r *repository) FindEffective(
	ctx context.Context,
	employeeIDs []uuid.UUID,
	asOf time.Time,
) (map[uuid.UUID]EmployeeSalary, error) {
	result := make(map[uuid.UUID]EmployeeSalary, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}

	var salaries []EmployeeSalary
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Where("effective_date <= ?", asOf).
		Order("effective_date DESC").
		Order("created_at DESC").
		Find(&salaries).Error
	if err != nil {
		return nil, err
	}

	for _, s := range salaries {
		if _, seen := result[s.EmployeeID]; seen {
			continue
		}
		result[s.EmployeeID] = s
	}
	return result, nil
}
