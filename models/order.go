package models

import "time"

// OrderStatus represents the current progress of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDIENTE"
	OrderStatusConfirmed OrderStatus = "CONFIRMADO"
	OrderStatusDelivered OrderStatus = "ENTREGADO"
	OrderStatusCancelled OrderStatus = "CANCELADO"
)

// Order represents a customer order. Status moves to CONFIRMADO on payment,
// and to ENTREGADO/CANCELADO in sync with the delivery lifecycle.
type Order struct {
	ID        int64       `db:"id" json:"id"`
	UserID    int64       `db:"user_id" json:"user_id"`
	Total     float64     `db:"total" json:"total"`
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`

	// Items is populated by queries that join order_items; nil otherwise.
	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is a single product line within an order.
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Product   Product `db:"-" json:"product"`
}
