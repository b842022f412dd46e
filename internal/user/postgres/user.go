package postgres

import (
	"gorm.io/gorm"

	rbacModel "github.com/frahmantamala/user-management/internal/core/datamodel/rbac"
	userModel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	model := user.ToDataModel(u)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	*u = *user.FromDataModel(model)
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var model userModel.User
	if err := r.db.Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var model userModel.User
	if err := r.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, err
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) List(limit, offset int) ([]*user.User, int64, error) {
	var total int64
	if err := r.db.Model(&userModel.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*userModel.User
	if err := r.db.Order("id ASC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*user.User, 0, len(models))
	for _, m := range models {
		users = append(users, user.FromDataModel(m))
	}
	return users, total, nil
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Save(user.ToDataModel(u)).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Delete(&userModel.User{}, id).Error
}

func (r *UserRepository) GetRoleIDByName(name string) (int64, error) {
	var role rbacModel.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return 0, err
	}
	return role.ID, nil
}
