package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"driverDispatch/models"
)

type DeliveryRepository struct {
	db DBTX
}

func NewDeliveryRepository(db *sql.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *DeliveryRepository) WithTx(tx *sql.Tx) *DeliveryRepository {
	return &DeliveryRepository{db: tx}
}

const deliveryColumns = `id, order_id, driver_id, status, pickup_lat, pickup_lng, pickup_name, dropoff_lat, dropoff_lng, dropoff_name, distance_meters, assigned_at, picked_up_at, delivered_at, updated_at`

// UpsertForOrder creates or replaces the delivery record for d.OrderID.
// There is at most one delivery per order; re-running matching for the same
// order overwrites the assignment instead of creating a second row.
func (r *DeliveryRepository) UpsertForOrder(ctx context.Context, d *models.Delivery) (*models.Delivery, error) {
	if d == nil {
		return nil, errors.New("delivery is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO deliveries (order_id, driver_id, status, pickup_lat, pickup_lng, pickup_name, dropoff_lat, dropoff_lng, dropoff_name, distance_meters, assigned_at, picked_up_at, delivered_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,NULL,NULL,?)
ON CONFLICT(order_id) DO UPDATE SET
  driver_id = excluded.driver_id,
  status = excluded.status,
  pickup_lat = excluded.pickup_lat,
  pickup_lng = excluded.pickup_lng,
  pickup_name = excluded.pickup_name,
  dropoff_lat = excluded.dropoff_lat,
  dropoff_lng = excluded.dropoff_lng,
  dropoff_name = excluded.dropoff_name,
  distance_meters = excluded.distance_meters,
  assigned_at = excluded.assigned_at,
  picked_up_at = NULL,
  delivered_at = NULL,
  updated_at = excluded.updated_at`,
		d.OrderID, d.DriverID, string(d.Status), d.PickupLat, d.PickupLng, d.PickupName,
		d.DropoffLat, d.DropoffLng, d.DropoffName, d.DistanceMeters, d.AssignedAt, d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r.GetByOrderID(ctx, d.OrderID)
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id int64) (*models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id)
	return scanDelivery(row)
}

func (r *DeliveryRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = ?`, orderID)
	return scanDelivery(row)
}

// GetActiveByDriver returns the driver's most recently assigned delivery whose
// status is in the active set, or (nil, nil) when the driver is free.
func (r *DeliveryRepository) GetActiveByDriver(ctx context.Context, driverID int64) (*models.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `
SELECT `+deliveryColumns+`
FROM deliveries
WHERE driver_id = ?
  AND status IN ('RUTA_RECOJO','ESPERA_RESTAURANTE','RUTA_ENTREGA','ESPERA_CLIENTE')
ORDER BY assigned_at DESC, id DESC
LIMIT 1`, driverID)
	return scanDelivery(row)
}

// UpdateStatus persists the status and timestamp fields of d. The write is
// guarded on the delivery still belonging to d.DriverID so a concurrent
// reassignment cannot be clobbered; sql.ErrNoRows is returned when the guard
// fails.
func (r *DeliveryRepository) UpdateStatus(ctx context.Context, d *models.Delivery) error {
	if d == nil {
		return errors.New("delivery is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
UPDATE deliveries
SET status = ?, picked_up_at = ?, delivered_at = ?, updated_at = ?
WHERE id = ? AND driver_id = ?`,
		string(d.Status), d.PickedUpAt, d.DeliveredAt, d.UpdatedAt, d.ID, d.DriverID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanDelivery(row *sql.Row) (*models.Delivery, error) {
	var d models.Delivery
	var status string
	var driverID sql.NullInt64
	var pickedUp, delivered sql.NullTime
	err := row.Scan(&d.ID, &d.OrderID, &driverID, &status,
		&d.PickupLat, &d.PickupLng, &d.PickupName,
		&d.DropoffLat, &d.DropoffLng, &d.DropoffName,
		&d.DistanceMeters, &d.AssignedAt, &pickedUp, &delivered, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.Status = models.DeliveryStatus(status)
	if driverID.Valid {
		v := driverID.Int64
		d.DriverID = &v
	}
	if pickedUp.Valid {
		v := pickedUp.Time
		d.PickedUpAt = &v
	}
	if delivered.Valid {
		v := delivered.Time
		d.DeliveredAt = &v
	}
	return &d, nil
}
