package geofence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Offsets chosen so two geofence centers sit a known number of meters apart:
// one degree of latitude is ~111195m on the 6371km sphere.
const metersPerDegreeLat = 111194.9

func TestCreateReportsOverlappingGeofences(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	first := &Geofence{Name: "Depot", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 60, Active: true}
	warnings, err := svc.Create(ctx, first)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Centers 100m apart, radii 60m each: 100 < 120, so they overlap.
	second := &Geofence{Name: "Annex", CenterLat: 40.0 + 100/metersPerDegreeLat, CenterLon: -74.0, RadiusM: 60, Active: true}
	warnings, err = svc.Create(ctx, second)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, first.ID, warnings[0].GeofenceID)
	assert.Equal(t, "Depot", warnings[0].Name)
}

func TestCreateDoesNotWarnForSeparatedGeofences(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	first := &Geofence{Name: "Depot", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 60, Active: true}
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	// Centers 200m apart, radii 60m each: 200 >= 120, no overlap.
	second := &Geofence{Name: "Annex", CenterLat: 40.0 + 200/metersPerDegreeLat, CenterLon: -74.0, RadiusM: 60, Active: true}
	warnings, err := svc.Create(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Both were still created regardless of warnings.
	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOverlappingIgnoresInactiveAndDeleted(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	inactive := &Geofence{Name: "Old Yard", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 500, Active: false}
	_, err := svc.Create(ctx, inactive)
	require.NoError(t, err)

	deleted := &Geofence{Name: "Closed Site", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 500, Active: true}
	_, err = svc.Create(ctx, deleted)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, deleted.ID))

	warnings, err := svc.Overlapping(ctx, 40.0, -74.0, 100, "")
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestUpdateExcludesSelfFromOverlapCheck(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	gf := &Geofence{Name: "Depot", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 60, Active: true}
	_, err := svc.Create(ctx, gf)
	require.NoError(t, err)

	gf.RadiusM = 80
	warnings, err := svc.Update(ctx, gf)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got, err := svc.Get(ctx, gf.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.RadiusM)
}

func TestAssignedToDegradesToNoRestriction(t *testing.T) {
	store := NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	// No assignment at all.
	gf, err := svc.AssignedTo(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, gf)

	created := &Geofence{Name: "Depot", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 60, Active: true}
	_, err = svc.Create(ctx, created)
	require.NoError(t, err)
	store.Assign("emp-1", created.ID)

	gf, err = svc.AssignedTo(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, gf)
	assert.Equal(t, created.ID, gf.ID)

	// Soft-deleting the assigned geofence degrades back to unrestricted.
	require.NoError(t, svc.SoftDelete(ctx, created.ID))
	gf, err = svc.AssignedTo(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, gf)
}
