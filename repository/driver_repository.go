package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"driverDispatch/models"
)

type DriverRepository struct {
	db DBTX
}

func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *DriverRepository) WithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{db: tx}
}

const driverColumns = `id, name, username, password_hash, plate, active, lat, lng, last_seen_at`

// Create inserts a new driver. PasswordHash must already be a bcrypt hash.
func (r *DriverRepository) Create(ctx context.Context, d *models.Driver) (*models.Driver, error) {
	if d == nil {
		return nil, errors.New("driver is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO drivers (name, username, password_hash, plate, active, lat, lng, last_seen_at) VALUES (?,?,?,?,?,?,?,?)`,
		d.Name, d.Username, d.PasswordHash, d.Plate, d.Active, d.Lat, d.Lng, d.LastSeenAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id)
	return scanDriver(row)
}

func (r *DriverRepository) GetByUsername(ctx context.Context, username string) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	row := r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE username = ?`, username)
	return scanDriver(row)
}

// UpdateLocation overwrites the driver's live position and last-seen
// timestamp, returning the refreshed snapshot. Returns (nil, nil) when the
// driver does not exist.
func (r *DriverRepository) UpdateLocation(ctx context.Context, id int64, lat, lng float64) (*models.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drivers SET lat = ?, lng = ?, last_seen_at = ? WHERE id = ?`,
		lat, lng, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// SetActive flips the operator-controlled availability toggle.
func (r *DriverRepository) SetActive(ctx context.Context, id int64, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `UPDATE drivers SET active = ? WHERE id = ?`, active, id)
	return err
}

// ListEligibleForDispatch returns drivers that are active and have a known
// position, each annotated with whether a delivery in the active status set is
// currently assigned to them. Busy state is derived here with a join, never
// stored on the driver row. Rows come back ordered by id so the matcher's
// first-encountered tie-break is reproducible.
func (r *DriverRepository) ListEligibleForDispatch(ctx context.Context) ([]models.EligibleDriver, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.name, d.username, d.password_hash, d.plate, d.active, d.lat, d.lng, d.last_seen_at,
       EXISTS (
         SELECT 1 FROM deliveries e
         WHERE e.driver_id = d.id
           AND e.status IN ('RUTA_RECOJO','ESPERA_RESTAURANTE','RUTA_ENTREGA','ESPERA_CLIENTE')
       ) AS busy
FROM drivers d
WHERE d.active = 1 AND d.lat IS NOT NULL AND d.lng IS NOT NULL
ORDER BY d.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EligibleDriver
	for rows.Next() {
		var e models.EligibleDriver
		var plate sql.NullString
		var lat, lng sql.NullFloat64
		var lastSeen sql.NullTime
		if err := rows.Scan(&e.ID, &e.Name, &e.Username, &e.PasswordHash, &plate, &e.Active, &lat, &lng, &lastSeen, &e.Busy); err != nil {
			return nil, err
		}
		applyDriverNullables(&e.Driver, plate, lat, lng, lastSeen)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanDriver(row *sql.Row) (*models.Driver, error) {
	var d models.Driver
	var plate sql.NullString
	var lat, lng sql.NullFloat64
	var lastSeen sql.NullTime
	err := row.Scan(&d.ID, &d.Name, &d.Username, &d.PasswordHash, &plate, &d.Active, &lat, &lng, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	applyDriverNullables(&d, plate, lat, lng, lastSeen)
	return &d, nil
}

func applyDriverNullables(d *models.Driver, plate sql.NullString, lat, lng sql.NullFloat64, lastSeen sql.NullTime) {
	if plate.Valid {
		v := plate.String
		d.Plate = &v
	}
	if lat.Valid {
		v := lat.Float64
		d.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		d.Lng = &v
	}
	if lastSeen.Valid {
		v := lastSeen.Time
		d.LastSeenAt = &v
	}
}
