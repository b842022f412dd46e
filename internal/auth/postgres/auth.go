package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/user-management/internal/auth"
	sessionModel "github.com/frahmantamala/user-management/internal/core/datamodel/session"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserForLogin(email string) (*auth.LoginUser, error) {
	var u auth.LoginUser

	query := `SELECT u.id, u.name, u.email, u.password_hash, u.status, r.name
	          FROM users u
	          JOIN roles r ON r.id = u.role_id
	          WHERE u.email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Status, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// CreateLoginSession rotates the user's session: any active session is closed
// and the new token+session pair is inserted, all in one transaction.
func (r *Repository) CreateLoginSession(userID int64, sessionID, accessToken string, loggedInAt, expiresAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.Model(&sessionModel.Session{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(map[string]interface{}{
				"is_active":     false,
				"logged_out_at": &now,
			}).Error; err != nil {
			return err
		}

		token := sessionModel.Token{
			AccessToken: accessToken,
			ExpiresAt:   expiresAt,
		}
		if err := tx.Create(&token).Error; err != nil {
			return err
		}

		session := sessionModel.Session{
			ID:         sessionID,
			UserID:     userID,
			TokenID:    token.ID,
			LoggedInAt: loggedInAt,
			IsActive:   true,
		}
		return tx.Create(&session).Error
	})
}

func (r *Repository) GetSession(sessionID string) (*auth.SessionInfo, error) {
	var s sessionModel.Session
	if err := r.db.Where("id = ?", sessionID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &auth.SessionInfo{
		ID:          s.ID,
		UserID:      s.UserID,
		LoggedInAt:  s.LoggedInAt,
		LoggedOutAt: s.LoggedOutAt,
		IsActive:    s.IsActive,
	}, nil
}

func (r *Repository) DeactivateSession(sessionID string, loggedOutAt time.Time) error {
	return r.db.Model(&sessionModel.Session{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{
			"is_active":     false,
			"logged_out_at": &loggedOutAt,
		}).Error
}

func (r *Repository) HasActiveSession(sessionID string) (bool, error) {
	var count int64
	err := r.db.Model(&sessionModel.Session{}).
		Where("id = ? AND is_active = ?", sessionID, true).
		Count(&count).Error
	return count > 0, err
}

// DeactivateExpiredSessions closes active sessions whose token expiry has
// passed. Used by the background sweeper.
func (r *Repository) DeactivateExpiredSessions(cutoff time.Time) (int64, error) {
	now := time.Now()
	result := r.db.Model(&sessionModel.Session{}).
		Where("is_active = ? AND token_id IN (SELECT id FROM tokens WHERE expires_at < ?)", true, cutoff).
		Updates(map[string]interface{}{
			"is_active":     false,
			"logged_out_at": &now,
		})
	return result.RowsAffected, result.Error
}

func (r *Repository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT u.id, u.email, r.name
	          FROM users u
	          JOIN roles r ON r.id = u.role_id
	          WHERE u.id = ? AND u.status = 'active'`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	permQuery := `SELECT p.name
	              FROM permissions p
	              JOIN role_permissions rp ON p.id = rp.permission_id
	              JOIN users u ON u.role_id = rp.role_id
	              WHERE u.id = ?`

	rows, err := r.db.Raw(permQuery, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var permissions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		permissions = append(permissions, name)
	}

	user.Permissions = permissions
	return &user, nil
}
