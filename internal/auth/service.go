package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/core/datamodel/user"
	"github.com/frahmantamala/user-management/internal/core/events"
)

// Service implements the login/session lifecycle: credential check, session
// rotation, token issuance and logout invalidation.
type Service struct {
	repo   RepositoryAPI
	tokens TokenManagerAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenManagerAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		bus:    bus,
		logger: logger,
	}
}

// Login verifies credentials, rotates the user's session and returns a fresh
// signed token. Unknown email and wrong password are indistinguishable to the
// caller; the log keeps the distinction.
func (s *Service) Login(dto LoginDTO) (*TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserForLogin(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: email not found", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}

	if u.Status != user.StatusActive {
		s.logger.Warn("login rejected: user not active", "user_id", u.ID, "status", u.Status)
		return nil, internal.ErrUserInactive
	}

	sessionID := uuid.NewString()

	accessToken, expiresAt, err := s.tokens.Generate(u.ID, u.Email, u.Role, sessionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to sign token", err)
	}

	// Deactivates any previous active session and persists the new one in a
	// single transaction, so two concurrent logins cannot both stay active.
	if err := s.repo.CreateLoginSession(u.ID, sessionID, accessToken, time.Now(), expiresAt); err != nil {
		return nil, internal.NewInternalError("failed to persist session", err)
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewUserLoggedIn(u.ID, u.Email, sessionID))
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenType,
	}, nil
}

// VerifyToken checks signature and expiry, then requires the embedded session
// to still be active so a logged-out token stops working immediately.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	sess, err := s.repo.GetSession(claims.SessionID())
	if err != nil || sess == nil || !sess.IsActive {
		return nil, internal.ErrSessionNotFound
	}

	return claims, nil
}

// Logout deactivates the session referenced by the token's jti. Fails when
// the session is missing or already inactive, making a repeat logout an error.
func (s *Service) Logout(claims *Claims) error {
	sessionID := claims.SessionID()

	sess, err := s.repo.GetSession(sessionID)
	if err != nil || sess == nil || !sess.IsActive {
		return internal.ErrSessionNotFound
	}

	if err := s.repo.DeactivateSession(sessionID, time.Now()); err != nil {
		return internal.NewInternalError("failed to deactivate session", err)
	}

	stillActive, err := s.repo.HasActiveSession(sessionID)
	if err != nil {
		return internal.NewInternalError("failed to confirm logout", err)
	}
	if stillActive {
		return internal.NewInternalError("session still active after logout", nil)
	}

	if s.bus != nil {
		s.bus.Publish(context.Background(), events.NewUserLoggedOut(sess.UserID, sessionID))
	}

	return nil
}

func (s *Service) GetUserWithPermissions(userID int64) (*User, error) {
	return s.repo.GetUserWithPermissions(userID)
}
