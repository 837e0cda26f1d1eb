package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id,name,barcode,price,stock,category,description,created_at,updated_at`

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id,name,barcode,price,stock,category,description)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Barcode, p.Price, p.Stock, p.Category, p.Description)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, uid))
}

func (r *postgresRepo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode=$1`, barcode))
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	switch {
	case filter.Search != "":
		query += ` WHERE name ILIKE $1 OR barcode LIKE $1`
		args = append(args, "%"+filter.Search+"%")
	case filter.Category != "":
		query += ` WHERE category=$1`
		args = append(args, filter.Category)
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []*Product
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, barcode=$2, price=$3, stock=$4, category=$5, description=$6, updated_at=$7
		WHERE id=$8`,
		p.Name, p.Barcode, p.Price, p.Stock, p.Category, p.Description, time.Now(), p.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrProductNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, uid)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresRepo) FindByName(ctx context.Context, name, exclude string) (*Product, error) {
	if exclude != "" {
		return r.scan(r.db.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE LOWER(name)=LOWER($1) AND id<>$2`, name, exclude))
	}
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE LOWER(name)=LOWER($1)`, name))
}

func (r *postgresRepo) FindByBarcode(ctx context.Context, barcode, exclude string) (*Product, error) {
	if exclude != "" {
		return r.scan(r.db.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE barcode=$1 AND id<>$2`, barcode, exclude))
	}
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode=$1`, barcode))
}

// ── scanner ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*Product, error) {
	p := &Product{}
	var barcode sql.NullString
	err := row.Scan(&p.ID, &p.Name, &barcode, &p.Price, &p.Stock,
		&p.Category, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if barcode.Valid {
		p.Barcode = &barcode.String
	}
	return p, nil
}
