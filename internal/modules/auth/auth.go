package auth

import (
	"context"
	"errors"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/marketlane/pos-backend/internal/modules/user"
)

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims

	// UserID is the parsed Subject, filled in after verification.
	UserID uuid.UUID `json:"-"`
}

var ErrInvalidCredentials = errors.New("invalid credentials")

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies the operator's credentials and returns a signed token
	// together with the user record.
	Login(ctx context.Context, username, password string) (string, *user.User, error)

	// Refresh issues a new token with a fresh expiry for already
	// authenticated claims.
	Refresh(claims *Claims) (string, error)
}
