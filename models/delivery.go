package models

import "time"

// DeliveryStatus represents the lifecycle state of a delivery.
// The values keep the Spanish wire vocabulary used by the driver app.
type DeliveryStatus string

const (
	DeliveryStatusRouteToPickup   DeliveryStatus = "RUTA_RECOJO"
	DeliveryStatusWaitRestaurant  DeliveryStatus = "ESPERA_RESTAURANTE"
	DeliveryStatusRouteToCustomer DeliveryStatus = "RUTA_ENTREGA"
	DeliveryStatusWaitCustomer    DeliveryStatus = "ESPERA_CLIENTE"
	DeliveryStatusDelivered       DeliveryStatus = "ENTREGADO"
	DeliveryStatusCancelled       DeliveryStatus = "CANCELADO"
)

// ActiveDeliveryStatuses are the in-progress statuses that mark the assigned
// driver as busy. Used for matching eligibility and the driver's active
// delivery lookup.
var ActiveDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusRouteToPickup,
	DeliveryStatusWaitRestaurant,
	DeliveryStatusRouteToCustomer,
	DeliveryStatusWaitCustomer,
}

// UpdatableDeliveryStatuses are the statuses a driver-facing transition may
// set. CONFIRMADO-style pre-assignment states are system-only.
var UpdatableDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusRouteToPickup,
	DeliveryStatusWaitRestaurant,
	DeliveryStatusRouteToCustomer,
	DeliveryStatusWaitCustomer,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// IsActive reports whether s is in the active status set.
func (s DeliveryStatus) IsActive() bool {
	for _, a := range ActiveDeliveryStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsUpdatable reports whether a driver is allowed to set s at all.
func (s DeliveryStatus) IsUpdatable() bool {
	for _, u := range UpdatableDeliveryStatuses {
		if s == u {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends the lifecycle.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// Delivery tracks the fulfilment of exactly one order (one row per order).
// DriverID is nil until matching assigns a driver; re-running matching for the
// same order replaces the row's assignment (upsert keyed by order_id).
type Delivery struct {
	ID             int64          `db:"id" json:"id"`
	OrderID        int64          `db:"order_id" json:"order_id"`
	DriverID       *int64         `db:"driver_id" json:"driver_id"`
	Status         DeliveryStatus `db:"status" json:"status"`
	PickupLat      float64        `db:"pickup_lat" json:"pickup_lat"`
	PickupLng      float64        `db:"pickup_lng" json:"pickup_lng"`
	PickupName     string         `db:"pickup_name" json:"pickup_name"`
	DropoffLat     float64        `db:"dropoff_lat" json:"dropoff_lat"`
	DropoffLng     float64        `db:"dropoff_lng" json:"dropoff_lng"`
	DropoffName    string         `db:"dropoff_name" json:"dropoff_name"`
	DistanceMeters int64          `db:"distance_meters" json:"distance_meters"`
	AssignedAt     time.Time      `db:"assigned_at" json:"assigned_at"`
	PickedUpAt     *time.Time     `db:"picked_up_at" json:"picked_up_at"`
	DeliveredAt    *time.Time     `db:"delivered_at" json:"delivered_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
