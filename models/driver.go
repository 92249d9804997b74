package models

import "time"

// Driver represents a delivery driver.
// Lat/Lng are nil until the driver reports a position for the first time.
// Active is an operator-controlled availability toggle; whether a driver is
// busy is derived from deliveries, never stored here.
type Driver struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Plate        *string    `db:"plate" json:"plate,omitempty"`
	Active       bool       `db:"active" json:"active"`
	Lat          *float64   `db:"lat" json:"lat"`
	Lng          *float64   `db:"lng" json:"lng"`
	LastSeenAt   *time.Time `db:"last_seen_at" json:"last_seen_at"`
}

// HasPosition reports whether the driver has shared a location at least once.
func (d *Driver) HasPosition() bool {
	return d.Lat != nil && d.Lng != nil
}

// EligibleDriver is a Driver annotated with whether it currently carries a
// delivery in the active status set.
type EligibleDriver struct {
	Driver
	Busy bool `json:"busy"`
}
