package user

import "context"

// Service defines the interface for user-related business logic.
type Service interface {
	CreateUser(ctx context.Context, username, password, role string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	// EnsureDefaultAdmin seeds an admin/admin account when the store has no
	// users yet, so a fresh install is reachable.
	EnsureDefaultAdmin(ctx context.Context) error
}
