package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the fixed token type returned by login.
const TokenType = "bearer"

type ServiceAPI interface {
	Login(dto LoginDTO) (*TokenResponse, error)
	Logout(claims *Claims) error
	VerifyToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(userID int64) (*User, error)
}

type RepositoryAPI interface {
	GetUserForLogin(email string) (*LoginUser, error)
	CreateLoginSession(userID int64, sessionID, accessToken string, loggedInAt, expiresAt time.Time) error
	GetSession(sessionID string) (*SessionInfo, error)
	DeactivateSession(sessionID string, loggedOutAt time.Time) error
	HasActiveSession(sessionID string) (bool, error)
	GetUserWithPermissions(userID int64) (*User, error)
}

type TokenManagerAPI interface {
	Generate(userID int64, email, role, sessionID string) (token string, expiresAt time.Time, err error)
	Validate(tokenString string) (*Claims, error)
}

// LoginUser is the credential slice of a user row needed by the login path.
type LoginUser struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Status       string
	Role         string
}

// SessionInfo mirrors one sessions row for logout and verification checks.
type SessionInfo struct {
	ID          string
	UserID      int64
	LoggedInAt  time.Time
	LoggedOutAt *time.Time
	IsActive    bool
}

// User is the identity attached to request context by the auth middleware.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

func (u *User) IsAdministrator() bool {
	return u.Role == "administrator"
}

// Claims is the JWT payload. The registered ID (jti) carries the session id
// so logout can invalidate the matching session row.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the session identifier embedded in the token.
func (c *Claims) SessionID() string {
	return c.ID
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ctxKey string

const (
	contextUserKey   ctxKey = "authUser"
	contextClaimsKey ctxKey = "authClaims"
)

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextUserKey, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextUserKey).(*User)
	return u, ok
}

func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextClaimsKey, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextClaimsKey).(*Claims)
	return c, ok
}
