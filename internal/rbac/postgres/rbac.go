package postgres

import (
	"gorm.io/gorm"

	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/rbac"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) rbac.Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPermissionID(name string) (int64, error) {
	var perm rbacModel.Permission
	if err := r.db.Where("name = ?", name).First(&perm).Error; err != nil {
		return 0, err
	}
	return perm.ID, nil
}

func (r *Repository) CreatePermission(p *rbacModel.Permission) error {
	return r.db.Create(p).Error
}

func (r *Repository) ListPermissionIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&rbacModel.Permission{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) GetRoleID(name string) (int64, error) {
	var role rbacModel.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return 0, err
	}
	return role.ID, nil
}

func (r *Repository) CreateRole(role *rbacModel.Role) error {
	return r.db.Create(role).Error
}

func (r *Repository) RoleHasPermission(roleID, permissionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&rbacModel.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) GrantPermissionToRole(roleID, permissionID int64) error {
	return r.db.Create(&rbacModel.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
	}).Error
}

func (r *Repository) UserExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&userModel.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(u *userModel.User) error {
	return r.db.Create(u).Error
}
