package models

import "time"

// User represents a customer reached through the messaging channel.
// TelegramID is nil for users created through the admin API who never opened
// the bot; such users cannot receive notifications.
type User struct {
	ID                int64      `db:"id" json:"id"`
	TelegramID        *string    `db:"telegram_id" json:"telegram_id"`
	Name              string     `db:"name" json:"name"`
	LocationLat       *float64   `db:"location_lat" json:"location_lat"`
	LocationLng       *float64   `db:"location_lng" json:"location_lng"`
	LocationUpdatedAt *time.Time `db:"location_updated_at" json:"location_updated_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// HasLocation reports whether the user has shared a delivery location.
func (u *User) HasLocation() bool {
	return u.LocationLat != nil && u.LocationLng != nil
}
