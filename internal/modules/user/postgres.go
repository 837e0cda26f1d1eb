package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)`,
		u.ID, u.Username, u.PasswordHash, u.Role)
	return err
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return r.scan(r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id = $1`, uid))
}

func (r *postgresRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE username = $1`, username))
}

func (r *postgresRepository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*User
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *postgresRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepository) scan(row rowScanner) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
