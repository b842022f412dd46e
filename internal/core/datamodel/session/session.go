package session

import "time"

// Token keeps the raw access token issued at login, one row per session.
type Token struct {
	ID          int64     `gorm:"primaryKey"`
	AccessToken string    `gorm:"column:access_token;not null"`
	ExpiresAt   time.Time `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Token) TableName() string {
	return "tokens"
}

// Session tracks one login's lifetime. IsActive and LoggedOutAt are always
// updated together; at most one active session exists per user.
type Session struct {
	ID          string     `gorm:"primaryKey;size:36"`
	UserID      int64      `gorm:"column:user_id;index;not null"`
	TokenID     int64      `gorm:"column:token_id;not null"`
	LoggedInAt  time.Time  `gorm:"column:logged_in_at;not null"`
	LoggedOutAt *time.Time `gorm:"column:logged_out_at"`
	IsActive    bool       `gorm:"column:is_active;index;not null;default:true"`
}

func (Session) TableName() string {
	return "sessions"
}
