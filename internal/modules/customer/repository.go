package customer

import "context"

// Repository defines customer data storage.
type Repository interface {
	// AccruePoints adds points to the customer with the given email,
	// creating the record if it does not exist yet.
	AccruePoints(ctx context.Context, email string, points int) error

	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
}
