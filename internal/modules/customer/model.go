package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Customer is a loyalty program member, keyed by email. Points accrue as a
// side effect of settled sales: floor(total / 10) per transaction.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrCustomerNotFound = errors.New("customer not found")
