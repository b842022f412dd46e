package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/user-management/internal"
)

// JWTTokenManager signs and verifies HS256 access tokens.
type JWTTokenManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewJWTTokenManager(secret string, ttl time.Duration) *JWTTokenManager {
	return &JWTTokenManager{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

func (m *JWTTokenManager) Generate(userID int64, email, role, sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.TTL)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies a token. The returned errors distinguish
// expired, malformed and bad-signature tokens; callers decide how much of
// that distinction reaches the client.
func (m *JWTTokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.Secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, internal.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, internal.ErrTokenMalformed.WithCause(err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, internal.ErrInvalidToken.WithCause(err)
		default:
			return nil, internal.ErrInvalidToken.WithCause(err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	if claims.ID == "" {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
