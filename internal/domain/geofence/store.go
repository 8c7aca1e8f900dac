package geofence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence seam for geofence rows and the employee assignment
// lookup. The punch path only ever reads through it.
type Store interface {
	Create(ctx context.Context, gf *Geofence) error
	Update(ctx context.Context, gf *Geofence) (bool, error)
	SoftDelete(ctx context.Context, geofenceID string) error
	FindByID(ctx context.Context, geofenceID string) (*Geofence, error)
	List(ctx context.Context) ([]Geofence, error)
	ListActive(ctx context.Context) ([]Geofence, error)
	AssignedTo(ctx context.Context, employeeID string) (*Geofence, error)
}

type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: db}
}

const geofenceColumns = `id, name, center_lat, center_lon, radius_m, active, deleted_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, gf *Geofence) error {
	return s.DB.QueryRow(ctx, `
    INSERT INTO geofences (name, center_lat, center_lon, radius_m, active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id, created_at, updated_at
  `, gf.Name, gf.CenterLat, gf.CenterLon, gf.RadiusM, gf.Active).Scan(&gf.ID, &gf.CreatedAt, &gf.UpdatedAt)
}

func (s *PostgresStore) Update(ctx context.Context, gf *Geofence) (bool, error) {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE geofences
    SET name = $1, center_lat = $2, center_lon = $3, radius_m = $4, active = $5, updated_at = now()
    WHERE id = $6 AND deleted_at IS NULL
  `, gf.Name, gf.CenterLat, gf.CenterLon, gf.RadiusM, gf.Active, gf.ID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, geofenceID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE geofences SET deleted_at = now(), updated_at = now()
    WHERE id = $1 AND deleted_at IS NULL
  `, geofenceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, geofenceID string) (*Geofence, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+geofenceColumns+`
    FROM geofences
    WHERE id = $1 AND deleted_at IS NULL
  `, geofenceID)
	return scanGeofence(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]Geofence, error) {
	return s.list(ctx, `
    SELECT `+geofenceColumns+`
    FROM geofences
    WHERE deleted_at IS NULL
    ORDER BY name
  `)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Geofence, error) {
	return s.list(ctx, `
    SELECT `+geofenceColumns+`
    FROM geofences
    WHERE deleted_at IS NULL AND active
    ORDER BY name
  `)
}

// AssignedTo resolves the geofence referenced by the employee row. Returns
// ErrNotFound when the employee has no reference or the referenced geofence is
// soft-deleted or inactive; the service treats that as "no restriction".
func (s *PostgresStore) AssignedTo(ctx context.Context, employeeID string) (*Geofence, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT g.id, g.name, g.center_lat, g.center_lon, g.radius_m, g.active, g.deleted_at, g.created_at, g.updated_at
    FROM employees e
    JOIN geofences g ON e.geofence_id = g.id
    WHERE e.id = $1 AND g.deleted_at IS NULL AND g.active
  `, employeeID)
	return scanGeofence(row)
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]Geofence, error) {
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Geofence
	for rows.Next() {
		var gf Geofence
		var deletedAt *time.Time
		if err := rows.Scan(&gf.ID, &gf.Name, &gf.CenterLat, &gf.CenterLon, &gf.RadiusM, &gf.Active, &deletedAt, &gf.CreatedAt, &gf.UpdatedAt); err != nil {
			return nil, err
		}
		gf.DeletedAt = deletedAt
		out = append(out, gf)
	}
	return out, rows.Err()
}

func scanGeofence(row pgx.Row) (*Geofence, error) {
	var gf Geofence
	var deletedAt *time.Time
	err := row.Scan(&gf.ID, &gf.Name, &gf.CenterLat, &gf.CenterLon, &gf.RadiusM, &gf.Active, &deletedAt, &gf.CreatedAt, &gf.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	gf.DeletedAt = deletedAt
	return &gf, nil
}
