package geofence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemory keeps geofences and employee assignments in memory. Used by unit
// and handler tests in place of the Postgres store.
type InMemory struct {
	mu          sync.RWMutex
	geofences   map[string]*Geofence
	assignments map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		geofences:   make(map[string]*Geofence),
		assignments: make(map[string]string),
	}
}

// Assign points an employee at a geofence, mirroring the foreign-key reference
// the user-management collaborator owns in Postgres. An empty geofenceID
// clears the assignment.
func (s *InMemory) Assign(employeeID, geofenceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if geofenceID == "" {
		delete(s.assignments, employeeID)
		return
	}
	s.assignments[employeeID] = geofenceID
}

func (s *InMemory) Create(_ context.Context, gf *Geofence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gf.ID == "" {
		gf.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	gf.CreatedAt = now
	gf.UpdatedAt = now
	clone := *gf
	s.geofences[gf.ID] = &clone
	return nil
}

func (s *InMemory) Update(_ context.Context, gf *Geofence) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.geofences[gf.ID]
	if !ok || existing.DeletedAt != nil {
		return false, nil
	}
	existing.Name = gf.Name
	existing.CenterLat = gf.CenterLat
	existing.CenterLon = gf.CenterLon
	existing.RadiusM = gf.RadiusM
	existing.Active = gf.Active
	existing.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *InMemory) SoftDelete(_ context.Context, geofenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.geofences[geofenceID]
	if !ok || existing.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now().UTC()
	existing.DeletedAt = &now
	existing.UpdatedAt = now
	return nil
}

func (s *InMemory) FindByID(_ context.Context, geofenceID string) (*Geofence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gf, ok := s.geofences[geofenceID]
	if !ok || gf.DeletedAt != nil {
		return nil, ErrNotFound
	}
	clone := *gf
	return &clone, nil
}

func (s *InMemory) List(_ context.Context) ([]Geofence, error) {
	return s.snapshot(func(gf *Geofence) bool { return gf.DeletedAt == nil }), nil
}

func (s *InMemory) ListActive(_ context.Context) ([]Geofence, error) {
	return s.snapshot(func(gf *Geofence) bool { return gf.DeletedAt == nil && gf.Active }), nil
}

func (s *InMemory) AssignedTo(_ context.Context, employeeID string) (*Geofence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	geofenceID, ok := s.assignments[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	gf, ok := s.geofences[geofenceID]
	if !ok || gf.DeletedAt != nil || !gf.Active {
		return nil, ErrNotFound
	}
	clone := *gf
	return &clone, nil
}

func (s *InMemory) snapshot(keep func(*Geofence) bool) []Geofence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Geofence
	for _, gf := range s.geofences {
		if keep(gf) {
			out = append(out, *gf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
