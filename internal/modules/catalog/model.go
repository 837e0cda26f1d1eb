package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product is an item the outlet sells. Stock is mutated here by catalog
// management and by the settlement engine's conditional decrement only.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Barcode     *string   `json:"barcode,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveProductRequest is the payload for creating or updating a product.
type SaveProductRequest struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// ListFilter narrows and pages product listings.
type ListFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ErrProductNotFound is returned when a product id does not exist.
var ErrProductNotFound = errors.New("product not found")

// DuplicateProductError reports a name or barcode collision with an
// existing product.
type DuplicateProductError struct {
	Field    string // "name" or "barcode"
	Existing *Product
}

func (e *DuplicateProductError) Error() string {
	if e.Field == "barcode" && e.Existing.Barcode != nil {
		return fmt.Sprintf("barcode %q is already assigned to product %q", *e.Existing.Barcode, e.Existing.Name)
	}
	return fmt.Sprintf("product with name %q already exists", e.Existing.Name)
}
