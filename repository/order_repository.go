package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"driverDispatch/models"
)

type OrderRepository struct {
	conn *sql.DB
	db   DBTX
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{conn: db, db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OrderRepository) WithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{conn: r.conn, db: tx}
}

// CreateWithItems inserts an order and its items in a single transaction.
// Total must already be computed by the caller from active product prices.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO orders (user_id, total, status) VALUES (?,?,?)`,
		o.UserID, o.Total, string(o.Status))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `INSERT INTO order_items (order_id, product_id, quantity) VALUES (?,?,?)`,
			id, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	o2, err := r.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if o2 == nil {
		return nil, fmt.Errorf("created order not found: id=%d", id)
	}
	return o2, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var o models.Order
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, total, status, created_at FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	return &o, nil
}

// GetWithItems fetches an order together with its item lines and the product
// each line refers to.
func (r *OrderRepository) GetWithItems(ctx context.Context, id int64) (*models.Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil || o == nil {
		return o, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.order_id, i.product_id, i.quantity, p.id, p.name, p.price, p.active, p.created_at
FROM order_items i
JOIN products p ON p.id = i.product_id
WHERE i.order_id = ?
ORDER BY i.id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.Product.ID, &it.Product.Name, &it.Product.Price, &it.Product.Active, &it.Product.CreatedAt); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns all orders ordered by id desc.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, total, status, created_at FROM orders ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Order
	for rows.Next() {
		var o models.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStatus returns orders matching any of the given statuses, newest first.
func (r *OrderRepository) ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	if len(statuses) == 0 {
		return r.List(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		placeholders[i] = "?"
		args[i] = string(s)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, total, status, created_at FROM orders WHERE status IN (`+strings.Join(placeholders, ",")+`) ORDER BY id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Order
	for rows.Next() {
		var o models.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus updates the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
