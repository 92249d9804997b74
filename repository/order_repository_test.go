package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"driverDispatch/internal/testutil"
	"driverDispatch/models"
)

func TestOrderCreateWithItems(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "repo_orders")
	users := NewUserRepository(d)
	products := NewProductRepository(d)
	orders := NewOrderRepository(d)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, err := users.Create(ctx, &models.User{Name: "Cliente"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	burger, err := products.Create(ctx, &models.Product{Name: "Doble", Price: 35, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	fries, err := products.Create(ctx, &models.Product{Name: "Papas", Price: 12.5, Active: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	o, err := orders.CreateWithItems(ctx, &models.Order{UserID: u.ID, Total: 82.5},
		[]models.OrderItem{
			{ProductID: burger.ID, Quantity: 2},
			{ProductID: fries.ID, Quantity: 1},
		})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if o.Status != models.OrderStatusPending {
		t.Errorf("new order status = %s, want %s", o.Status, models.OrderStatusPending)
	}
	if len(o.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(o.Items))
	}
	if o.Items[0].Product.Name != "Doble" || o.Items[0].Quantity != 2 {
		t.Errorf("unexpected first item: %+v", o.Items[0])
	}

	if _, err := orders.CreateWithItems(ctx, &models.Order{UserID: u.ID}, nil); err == nil {
		t.Error("order without items should fail")
	}

	if err := orders.UpdateStatus(ctx, o.ID, models.OrderStatusConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	confirmed, err := orders.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if confirmed.Status != models.OrderStatusConfirmed {
		t.Errorf("status = %s, want %s", confirmed.Status, models.OrderStatusConfirmed)
	}

	if err := orders.UpdateStatus(ctx, 9999, models.OrderStatusConfirmed); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("unknown order update: expected sql.ErrNoRows, got %v", err)
	}

	byStatus, err := orders.ListByStatus(ctx, models.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != o.ID {
		t.Errorf("unexpected confirmed orders: %+v", byStatus)
	}
	empty, err := orders.ListByStatus(ctx, models.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("list delivered: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no delivered orders, got %+v", empty)
	}
}
