package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	products []*Product
}

func (f *fakeRepo) Create(ctx context.Context, p *Product) error {
	f.products = append(f.products, p)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	for _, p := range f.products {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeRepo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	for _, p := range f.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return f.products, nil
}

func (f *fakeRepo) Update(ctx context.Context, p *Product) error { return nil }

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	for i, p := range f.products {
		if p.ID.String() == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return ErrProductNotFound
}

func (f *fakeRepo) FindByName(ctx context.Context, name, exclude string) (*Product, error) {
	for _, p := range f.products {
		if strings.EqualFold(p.Name, name) && p.ID.String() != exclude {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeRepo) FindByBarcode(ctx context.Context, barcode, exclude string) (*Product, error) {
	for _, p := range f.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.ID.String() != exclude {
			return p, nil
		}
	}
	return nil, ErrProductNotFound
}

func TestCreateProduct(t *testing.T) {
	svc := NewService(&fakeRepo{})

	p, err := svc.CreateProduct(context.Background(), SaveProductRequest{
		Name:    "  Olive Oil  ",
		Barcode: " 4006381333931 ",
		Price:   8.99,
		Stock:   12,
	})
	require.NoError(t, err)
	assert.Equal(t, "Olive Oil", p.Name)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "4006381333931", *p.Barcode)
	assert.Equal(t, 12, p.Stock)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	tests := []struct {
		name string
		req  SaveProductRequest
	}{
		{"missing name", SaveProductRequest{Price: 1.00, Stock: 1}},
		{"negative price", SaveProductRequest{Name: "X", Price: -0.01, Stock: 1}},
		{"negative stock", SaveProductRequest{Name: "X", Price: 1.00, Stock: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}

func TestCreateProductDuplicateName(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.CreateProduct(context.Background(), SaveProductRequest{Name: "Bananas", Price: 1.20, Stock: 30})
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), SaveProductRequest{Name: "bananas", Price: 1.10, Stock: 5})
	var dup *DuplicateProductError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "name", dup.Field)
	assert.Equal(t, "Bananas", dup.Existing.Name)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.CreateProduct(context.Background(), SaveProductRequest{Name: "Pasta", Barcode: "111", Price: 2.00, Stock: 10})
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), SaveProductRequest{Name: "Penne", Barcode: "111", Price: 2.20, Stock: 10})
	var dup *DuplicateProductError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "barcode", dup.Field)
}

func TestUpdateProductExcludesSelf(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	p, err := svc.CreateProduct(context.Background(), SaveProductRequest{Name: "Honey", Barcode: "222", Price: 6.00, Stock: 4})
	require.NoError(t, err)

	// Re-saving the same product under its own name and barcode is not a
	// duplicate.
	updated, err := svc.UpdateProduct(context.Background(), p.ID.String(), SaveProductRequest{
		Name: "Honey", Barcode: "222", Price: 6.50, Stock: 8,
	})
	require.NoError(t, err)
	assert.InDelta(t, 6.50, updated.Price, 1e-9)
	assert.Equal(t, 8, updated.Stock)
}
