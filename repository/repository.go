package repository

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories. Both *sql.DB
// and *sql.Tx satisfy it, so a repository can be rebound to a transaction via
// WithTx when several writes must commit atomically.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Users      *UserRepository
	Products   *ProductRepository
	Orders     *OrderRepository
	Drivers    *DriverRepository
	Deliveries *DeliveryRepository
}

// New builds the repository set for the given database.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Products:   NewProductRepository(db),
		Orders:     NewOrderRepository(db),
		Drivers:    NewDriverRepository(db),
		Deliveries: NewDeliveryRepository(db),
	}
}
