package rbac

import (
	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

// AdministratorRole receives every known permission during seeding.
const (
	AdministratorRole = "administrator"
	DefaultRole       = "default"
)

// Built-in permission names used by route guards.
const (
	PermissionCreate = "create"
	PermissionRead   = "read"
	PermissionUpdate = "update"
	PermissionDelete = "delete"
)

type Repository interface {
	GetPermissionID(name string) (int64, error)
	CreatePermission(p *rbacModel.Permission) error
	ListPermissionIDs() ([]int64, error)

	GetRoleID(name string) (int64, error)
	CreateRole(r *rbacModel.Role) error

	RoleHasPermission(roleID, permissionID int64) (bool, error)
	GrantPermissionToRole(roleID, permissionID int64) error

	UserExistsByEmail(email string) (bool, error)
	CreateUser(u *userModel.User) error
}
