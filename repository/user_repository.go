package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"driverDispatch/models"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, name, location_lat, location_lng, location_updated_at, created_at`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (telegram_id, name, location_lat, location_lng, location_updated_at) VALUES (?,?,?,?,?)`,
		u.TelegramID, u.Name, u.LocationLat, u.LocationLng, u.LocationUpdatedAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = ?`, telegramID)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		var tgID sql.NullString
		var lat, lng sql.NullFloat64
		var locUpdated sql.NullTime
		if err := rows.Scan(&u.ID, &tgID, &u.Name, &lat, &lng, &locUpdated, &u.CreatedAt); err != nil {
			return nil, err
		}
		applyUserNullables(&u, tgID, lat, lng, locUpdated)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites name and location fields of an existing user.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE users SET name = ?, location_lat = ?, location_lng = ?, location_updated_at = ? WHERE id = ?`,
		u.Name, u.LocationLat, u.LocationLng, u.LocationUpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertLocationByTelegramID stores the customer's shared location, creating
// the user on first contact. The location becomes the dropoff point of any
// delivery assigned afterwards.
func (r *UserRepository) UpsertLocationByTelegramID(ctx context.Context, telegramID, name string, lat, lng float64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (telegram_id, name, location_lat, location_lng, location_updated_at)
VALUES (?,?,?,?,?)
ON CONFLICT(telegram_id) DO UPDATE SET
  name = excluded.name,
  location_lat = excluded.location_lat,
  location_lng = excluded.location_lng,
  location_updated_at = excluded.location_updated_at`,
		telegramID, name, lat, lng, now)
	if err != nil {
		return nil, err
	}
	return r.GetByTelegramID(ctx, telegramID)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var tgID sql.NullString
	var lat, lng sql.NullFloat64
	var locUpdated sql.NullTime
	err := row.Scan(&u.ID, &tgID, &u.Name, &lat, &lng, &locUpdated, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	applyUserNullables(&u, tgID, lat, lng, locUpdated)
	return &u, nil
}

func applyUserNullables(u *models.User, tgID sql.NullString, lat, lng sql.NullFloat64, locUpdated sql.NullTime) {
	if tgID.Valid {
		v := tgID.String
		u.TelegramID = &v
	}
	if lat.Valid {
		v := lat.Float64
		u.LocationLat = &v
	}
	if lng.Valid {
		v := lng.Float64
		u.LocationLng = &v
	}
	if locUpdated.Valid {
		v := locUpdated.Time
		u.LocationUpdatedAt = &v
	}
}
