package repository

import (
	"context"

	"driverDispatch/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpsertLocationByTelegramID(ctx context.Context, telegramID, name string, lat, lng float64) (*models.User, error)
}

// ProductRepositoryI defines operations on Product entities.
type ProductRepositoryI interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	GetActiveByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Deactivate(ctx context.Context, id int64) error
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetWithItems(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// DriverRepositoryI is the driver directory contract: identity, live
// position, and dispatch eligibility.
type DriverRepositoryI interface {
	Create(ctx context.Context, d *models.Driver) (*models.Driver, error)
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	GetByUsername(ctx context.Context, username string) (*models.Driver, error)
	UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Driver, error)
	SetActive(ctx context.Context, id int64, active bool) error
	ListEligibleForDispatch(ctx context.Context) ([]models.EligibleDriver, error)
}

// DeliveryRepositoryI is the delivery lifecycle store contract: one record
// per order, status, timestamps and driver assignment.
type DeliveryRepositoryI interface {
	UpsertForOrder(ctx context.Context, d *models.Delivery) (*models.Delivery, error)
	GetByID(ctx context.Context, id int64) (*models.Delivery, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error)
	GetActiveByDriver(ctx context.Context, driverID int64) (*models.Delivery, error)
	UpdateStatus(ctx context.Context, d *models.Delivery) error
}
