package app

import (
	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/employeesalary"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/messaging/kafka"
	"barangay-payroll/internal/notification"
	"barangay-payroll/internal/overload"
	"barangay-payroll/internal/payroll"
	"barangay-payroll/internal/rbac"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminRole = "payroll_admin"

var payrollPermissions = []rbac.PermissionSpec{
	{Resource: "payroll", Action: "read"},
	{Resource: "payroll", Action: "generate"},
	{Resource: "payroll", Action: "release"},
}

// Migrate creates the schema and makes sure the payroll admin role exists.
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(
		&employee.Employee{},
		&employeesalary.EmployeeSalary{},
		&deduction.DeductionType{},
		&deduction.Deduction{},
		&loan.Loan{},
		&overload.OverloadPay{},
		&payroll.PayrollEntry{},
		&notification.Notification{},
		&kafka.OutboxRecord{},
		&rbac.Role{},
		&rbac.Permission{},
		&rbac.RolePermission{},
		&rbac.UserRole{},
	); err != nil {
		return err
	}

	roleID, err := rbac.NewRepository(db).EnsureRole(adminRole, "Generates and releases barangay payroll", payrollPermissions)
	if err != nil {
		return err
	}
	logger.Info("schema migrated", zap.String("admin_role_id", roleID.String()))
	return nil
}
