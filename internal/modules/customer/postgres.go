package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL customer repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) AccruePoints(ctx context.Context, email string, points int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET points = customers.points + EXCLUDED.points`,
		uuid.New(), email, points)
	return err
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	c := &Customer{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, points, created_at
		FROM customers WHERE email = $1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Points, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, points, created_at
		FROM customers ORDER BY points DESC, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []*Customer
	for rows.Next() {
		c := &Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Points, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
