package scope

import (
	"time"

	"gorm.io/gorm"
)

// Unarchived keeps rows that have not been archived yet.
func Unarchived(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(table + ".archived_at IS NULL")
	}
}

// EmployeeIn limits a query to the given employees; an empty list matches nothing.
func EmployeeIn(table string, employeeIDs []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(employeeIDs) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(table+".employee_id IN ?", employeeIDs)
	}
}

// Period matches rows whose period columns equal the given closed interval exactly.
func Period(start, end time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("period_start = ? AND period_end = ?", start, end)
	}
}
