package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketlane/pos-backend/internal/modules/user"
)

type service struct {
	userRepo user.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, secret []byte, tokenTTL time.Duration) Service {
	return &service{userRepo: userRepo, secret: secret, tokenTTL: tokenTTL}
}

func (s *service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.ID.String(), u.Username, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) Refresh(claims *Claims) (string, error) {
	return s.issueToken(claims.UserID.String(), claims.Username, claims.Role)
}

func (s *service) issueToken(subject, username, role string) (string, error) {
	claims := &Claims{
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			ExpiresAt: time.Now().Add(s.tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
