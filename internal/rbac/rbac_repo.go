package rbac

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetUserRoles() ([]UserRoleRow, error)
	GetRolePermissions() ([]RolePermissionRow, error)
	EnsureRole(name, description string, perms []PermissionSpec) (uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type UserRoleRow struct {
	UserID string
	RoleID string
}

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetUserRoles() ([]UserRoleRow, error) {
	var result []UserRoleRow
	err := r.db.
		Table("user_roles").
		Select("user_roles.user_id, user_roles.role_id").
		Scan(&result).Error
	return result, err
}

func (r *repository) GetRolePermissions() ([]RolePermissionRow, error) {
	var result []RolePermissionRow
	err := r.db.
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Scan(&result).Error
	return result, err
}

// EnsureRole creates the role and permissions if missing and grants every perm to the role.
func (r *repository) EnsureRole(name, description string, perms []PermissionSpec) (uuid.UUID, error) {
	var roleID uuid.UUID
	err := r.db.Transaction(func(tx *gorm.DB) error {
		role := Role{ID: uuid.New(), Name: name, Description: description}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&role).Error; err != nil {
			return err
		}
		var existing Role
		if err := tx.Where("name = ?", name).First(&existing).Error; err != nil {
			return err
		}
		roleID = existing.ID

		for _, p := range perms {
			perm := Permission{ID: uuid.New(), Resource: p.Resource, Action: p.Action, Label: p.Label}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "resource"}, {Name: "action"}},
				DoNothing: true,
			}).Create(&perm).Error; err != nil {
				return err
			}
			var stored Permission
			if err := tx.Where("resource = ? AND action = ?", p.Resource, p.Action).First(&stored).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&RolePermission{RoleID: existing.ID, PermissionID: stored.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return roleID, err
}
