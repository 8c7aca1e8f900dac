package geofence

import (
	"errors"
	"time"
)

// Radius bounds for a geofence, in meters.
const (
	MinRadiusMeters = 10.0
	MaxRadiusMeters = 10000.0
)

var ErrNotFound = errors.New("geofence not found")

type Geofence struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CenterLat float64    `json:"centerLat"`
	CenterLon float64    `json:"centerLon"`
	RadiusM   float64    `json:"radiusMeters"`
	Active    bool       `json:"active"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Overlap identifies an existing active geofence whose circle intersects a
// proposed one. Reported as a warning, never a rejection.
type Overlap struct {
	GeofenceID string `json:"geofenceId"`
	Name       string `json:"name"`
}

// Validation is the verdict of comparing a reported coordinate against an
// employee's assigned geofence. It is attached to the punch session as
// validity flags and returned to the caller; it is never persisted on its own.
type Validation struct {
	Valid        bool     `json:"valid"`
	DistanceM    *float64 `json:"distanceMeters,omitempty"`
	GeofenceName string   `json:"geofenceName,omitempty"`
	Message      string   `json:"message"`
}
