package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req SaveProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req SaveProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req SaveProductRequest) (*Product, error) {
	name, barcode, err := validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, name, barcode, ""); err != nil {
		return nil, err
	}

	p := &Product{
		ID:          uuid.New(),
		Name:        name,
		Barcode:     barcode,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req SaveProductRequest) (*Product, error) {
	name, barcode, err := validate(req)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, name, barcode, id); err != nil {
		return nil, err
	}

	p.Name = name
	p.Barcode = barcode
	p.Price = req.Price
	p.Stock = req.Stock
	p.Category = req.Category
	p.Description = req.Description
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(req SaveProductRequest) (name string, barcode *string, err error) {
	name = strings.TrimSpace(req.Name)
	if name == "" {
		return "", nil, fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return "", nil, fmt.Errorf("price must be non-negative")
	}
	if req.Stock < 0 {
		return "", nil, fmt.Errorf("stock must be non-negative")
	}
	if code := strings.TrimSpace(req.Barcode); code != "" {
		barcode = &code
	}
	return name, barcode, nil
}

func (s *service) checkDuplicates(ctx context.Context, name string, barcode *string, exclude string) error {
	existing, err := s.repo.FindByName(ctx, name, exclude)
	if err == nil {
		return &DuplicateProductError{Field: "name", Existing: existing}
	}
	if !errors.Is(err, ErrProductNotFound) {
		return err
	}

	if barcode != nil {
		existing, err = s.repo.FindByBarcode(ctx, *barcode, exclude)
		if err == nil {
			return &DuplicateProductError{Field: "barcode", Existing: existing}
		}
		if !errors.Is(err, ErrProductNotFound) {
			return err
		}
	}
	return nil
}
