package geofence

import (
	"context"
	"errors"

	"timeclock/internal/domain/geo"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create persists the geofence and reports every active geofence whose circle
// intersects it. Overlap is a warning for the caller to display; creation is
// never blocked by it.
func (s *Service) Create(ctx context.Context, gf *Geofence) ([]Overlap, error) {
	overlaps, err := s.Overlapping(ctx, gf.CenterLat, gf.CenterLon, gf.RadiusM, "")
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, gf); err != nil {
		return nil, err
	}
	return overlaps, nil
}

// Update rewrites the geofence in place and recomputes overlap warnings
// against the other active geofences.
func (s *Service) Update(ctx context.Context, gf *Geofence) ([]Overlap, error) {
	overlaps, err := s.Overlapping(ctx, gf.CenterLat, gf.CenterLon, gf.RadiusM, gf.ID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, gf)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrNotFound
	}
	return overlaps, nil
}

func (s *Service) SoftDelete(ctx context.Context, geofenceID string) error {
	return s.store.SoftDelete(ctx, geofenceID)
}

func (s *Service) Get(ctx context.Context, geofenceID string) (*Geofence, error) {
	return s.store.FindByID(ctx, geofenceID)
}

func (s *Service) List(ctx context.Context) ([]Geofence, error) {
	return s.store.List(ctx)
}

// Overlapping returns every active geofence whose circle intersects the given
// one: two circles overlap when the center distance is strictly less than the
// sum of their radii (tangent circles do not overlap).
func (s *Service) Overlapping(ctx context.Context, centerLat, centerLon, radiusM float64, excludeID string) ([]Overlap, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var overlaps []Overlap
	for _, other := range active {
		if other.ID == excludeID {
			continue
		}
		distance := geo.DistanceMeters(centerLat, centerLon, other.CenterLat, other.CenterLon)
		if distance < radiusM+other.RadiusM {
			overlaps = append(overlaps, Overlap{GeofenceID: other.ID, Name: other.Name})
		}
	}
	return overlaps, nil
}

// AssignedTo resolves the employee's assigned geofence. A missing assignment
// or an unusable (soft-deleted, inactive) geofence degrades to nil: attendance
// must still be recordable when configuration data is inconsistent.
func (s *Service) AssignedTo(ctx context.Context, employeeID string) (*Geofence, error) {
	gf, err := s.store.AssignedTo(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return gf, nil
}
