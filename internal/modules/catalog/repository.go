package catalog

import "context"

// Repository defines product data storage.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error

	// FindByName and FindByBarcode look up possible duplicates, skipping
	// the product identified by exclude (empty for creates). Name matching
	// is case-insensitive. Both return ErrProductNotFound when no
	// conflicting product exists.
	FindByName(ctx context.Context, name, exclude string) (*Product, error)
	FindByBarcode(ctx context.Context, barcode, exclude string) (*Product, error)
}
