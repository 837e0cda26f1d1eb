package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type PostgresLedger struct{ db *sql.DB }

// NewPostgresLedger creates a PostgreSQL ledger. The returned value also
// satisfies StockReader.
func NewPostgresLedger(db *sql.DB) *PostgresLedger { return &PostgresLedger{db: db} }

var (
	_ Ledger      = (*PostgresLedger)(nil)
	_ StockReader = (*PostgresLedger)(nil)
)

// CreateSettlement runs the whole settlement as one database transaction.
// The per-line conditional update both checks and applies the decrement in a
// single statement, so concurrent settlements racing for the same product's
// last units are serialized by the row lock: whichever commits first wins and
// the loser's update matches zero rows.
func (r *PostgresLedger) CreateSettlement(ctx context.Context, t *Transaction, lines []TransactionLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, cashier_id, total, discount_amount, payment_method, customer_email, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.CashierID, t.Total, t.Discount, t.PaymentMethod, nullable(t.CustomerEmail), t.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "insert transaction", Err: err}
	}

	for _, l := range lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1`,
			l.Quantity, l.ProductID)
		if err != nil {
			return &PersistenceError{Op: "decrement stock", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &PersistenceError{Op: "decrement stock", Err: err}
		}
		if n == 0 {
			// Zero rows means the product is gone or its stock moved under
			// us. Probe inside the same transaction to say which, then let
			// the deferred rollback undo everything done so far.
			var name string
			var available int
			err := tx.QueryRowContext(ctx,
				`SELECT name, stock FROM products WHERE id = $1`, l.ProductID).
				Scan(&name, &available)
			if errors.Is(err, sql.ErrNoRows) {
				return &ProductNotFoundError{ProductID: l.ProductID}
			}
			if err != nil {
				return &PersistenceError{Op: "probe stock", Err: err}
			}
			return &InsufficientStockError{
				ProductID:   l.ProductID,
				ProductName: name,
				Requested:   l.Quantity,
				Available:   available,
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_items (id, transaction_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			l.ID, l.TransactionID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
		if err != nil {
			return &PersistenceError{Op: "insert transaction item", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

func (r *PostgresLedger) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	t := &Transaction{}
	var customerEmail sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT t.id, t.cashier_id, t.total, t.discount_amount, t.payment_method,
		       t.customer_email, t.created_at, u.username
		FROM transactions t
		JOIN users u ON u.id = t.cashier_id
		WHERE t.id = $1`, uid).
		Scan(&t.ID, &t.CashierID, &t.Total, &t.Discount, &t.PaymentMethod,
			&customerEmail, &t.CreatedAt, &t.CashierName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get transaction", Err: err}
	}
	if customerEmail.Valid {
		t.CustomerEmail = customerEmail.String
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ti.id, ti.transaction_id, ti.product_id, p.name, ti.quantity, ti.unit_price, ti.subtotal
		FROM transaction_items ti
		JOIN products p ON p.id = ti.product_id
		WHERE ti.transaction_id = $1`, uid)
	if err != nil {
		return nil, &PersistenceError{Op: "get transaction items", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var l TransactionLine
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ProductID, &l.ProductName,
			&l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, &PersistenceError{Op: "scan transaction item", Err: err}
		}
		t.Lines = append(t.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "get transaction items", Err: err}
	}
	return t, nil
}

func (r *PostgresLedger) ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	query := `
		SELECT t.id, t.cashier_id, t.total, t.discount_amount, t.payment_method,
		       t.customer_email, t.created_at, u.username
		FROM transactions t
		JOIN users u ON u.id = t.cashier_id`
	args := []interface{}{}
	if filter.StartDate != "" && filter.EndDate != "" {
		query += ` WHERE DATE(t.created_at) BETWEEN $1 AND $2`
		args = append(args, filter.StartDate, filter.EndDate)
	}
	query += fmt.Sprintf(` ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &PersistenceError{Op: "list transactions", Err: err}
	}
	defer rows.Close()
	var txs []*Transaction
	for rows.Next() {
		t := &Transaction{}
		var customerEmail sql.NullString
		if err := rows.Scan(&t.ID, &t.CashierID, &t.Total, &t.Discount, &t.PaymentMethod,
			&customerEmail, &t.CreatedAt, &t.CashierName); err != nil {
			return nil, &PersistenceError{Op: "scan transaction", Err: err}
		}
		if customerEmail.Valid {
			t.CustomerEmail = customerEmail.String
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *PostgresLedger) ProductInfo(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	info := &ProductInfo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, price, stock FROM products WHERE id = $1`, id).
		Scan(&info.ID, &info.Name, &info.Price, &info.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read product", Err: err}
	}
	return info, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
