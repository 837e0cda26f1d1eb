package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role controls what an operator may do. Admins manage the catalog and
// users; cashiers settle sales.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is an operator of the POS terminal.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUsernameUsed = errors.New("username already taken")
)
