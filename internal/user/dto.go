package user

import (
	"strings"

	"github.com/frahmantamala/user-management/internal"
	userDatamodel "github.com/frahmantamala/user-management/internal/core/datamodel/user"
)

type CreateUserDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserDTO carries a partial update: nil fields are left untouched.
type UpdateUserDTO struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeMissingField)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("email is not valid", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

func (d UpdateUserDTO) Validate() error {
	if d.Name == nil && d.Email == nil && d.Password == nil && d.Status == nil {
		return internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return internal.NewValidationError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if d.Email != nil && !strings.Contains(*d.Email, "@") {
		return internal.NewValidationError("email is not valid", internal.ErrCodeValidationFailed)
	}
	if d.Password != nil && len(*d.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if d.Status != nil {
		switch *d.Status {
		case userDatamodel.StatusActive, userDatamodel.StatusInactive, userDatamodel.StatusSuspended:
		default:
			return internal.NewValidationError(
				"status only accepts values: active, inactive, suspended",
				internal.ErrCodeInvalidValue,
			)
		}
	}
	return nil
}
