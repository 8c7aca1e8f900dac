package punch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/domain/geofence"
)

const metersPerDegreeLat = 111194.9

type fixture struct {
	store     *InMemory
	geofences *geofence.InMemory
	svc       *Service
	clock     *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewInMemory()
	geofenceStore := geofence.NewInMemory()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	svc := NewService(store, geofence.NewService(geofenceStore), nil, WithClock(clock.Now))
	return &fixture{store: store, geofences: geofenceStore, svc: svc, clock: clock}
}

func (f *fixture) addEmployee(id string) {
	f.store.AddEmployee(Employee{ID: id, Name: "Test Employee", Active: true})
}

func (f *fixture) assignGeofence(t *testing.T, employeeID string, radius float64) *geofence.Geofence {
	t.Helper()
	gf := &geofence.Geofence{Name: "Head Office", CenterLat: 40.0, CenterLon: -74.0, RadiusM: radius, Active: true}
	require.NoError(t, f.geofences.Create(context.Background(), gf))
	f.geofences.Assign(employeeID, gf.ID)
	return gf
}

func TestPunchInInsideGeofence(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	f.assignGeofence(t, "emp-1", 100)

	result, err := f.svc.Transition(context.Background(), "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	assert.True(t, result.Validation.Valid)
	require.NotNil(t, result.Validation.DistanceM)
	assert.Equal(t, 0.0, *result.Validation.DistanceM)
	assert.Equal(t, "Head Office", result.Validation.GeofenceName)

	assert.True(t, result.Session.PunchInValid)
	assert.Equal(t, f.clock.now, result.Session.PunchInAt)
	assert.Nil(t, result.Session.PunchOutAt)
}

func TestPunchOutOutsideGeofenceIsRecordedNotBlocked(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	f.assignGeofence(t, "emp-1", 100)

	_, err := f.svc.Transition(context.Background(), "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)

	// ~250m north of center: outside the 100m geofence by 150m.
	lat := 40.0 + 250.0/metersPerDegreeLat
	result, err := f.svc.Transition(context.Background(), "emp-1", KindPunchOut, lat, -74.0, "")
	require.NoError(t, err, "punching outside the geofence must still be recorded")

	assert.False(t, result.Validation.Valid)
	assert.Contains(t, result.Validation.Message, "150m beyond boundary")
	require.NotNil(t, result.Session.PunchOutValid)
	assert.False(t, *result.Session.PunchOutValid)
	require.NotNil(t, result.Session.PunchOutAt)
}

func TestPunchInWithoutGeofenceAlwaysValid(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")

	result, err := f.svc.Transition(context.Background(), "emp-1", KindPunchIn, -33.8688, 151.2093, "")
	require.NoError(t, err)
	assert.True(t, result.Validation.Valid)
	assert.Nil(t, result.Validation.DistanceM)
}

func TestDoublePunchInIsConflict(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")

	first, err := f.svc.Transition(context.Background(), "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	// Repeating the illegal transition keeps yielding the same rejection and
	// never a second open session.
	for i := 0; i < 3; i++ {
		_, err = f.svc.Transition(context.Background(), "emp-1", KindPunchIn, 40.0, -74.0, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflictingState)

		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, KindPunchIn, conflict.Attempted)
		assert.Equal(t, StateClockedIn, conflict.Current)
		require.NotNil(t, conflict.OpenedAt)
		assert.Equal(t, first.Session.PunchInAt, *conflict.OpenedAt)
	}

	open, err := f.store.FindOpenSession(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Equal(t, first.Session.ID, open.ID)
}

func TestPunchOutWithoutOpenSessionIsConflict(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")

	_, err := f.svc.Transition(context.Background(), "emp-1", KindPunchOut, 40.0, -74.0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingState)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, StateClockedOut, conflict.Current)
	assert.Nil(t, conflict.OpenedAt)
}

func TestBreakLifecycle(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	// break_end before break_start is a conflict.
	_, err = f.svc.Transition(ctx, "emp-1", KindBreakEnd, 40.0, -74.0, "")
	assert.ErrorIs(t, err, ErrConflictingState)

	f.clock.Advance(time.Hour)
	result, err := f.svc.Transition(ctx, "emp-1", KindBreakStart, 40.0, -74.0, "")
	require.NoError(t, err)
	require.NotNil(t, result.Session.BreakStartAt)

	status, err := f.svc.Status(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, StateOnBreak, status.State)

	// A second break_start on the same session is a conflict.
	_, err = f.svc.Transition(ctx, "emp-1", KindBreakStart, 40.0, -74.0, "")
	assert.ErrorIs(t, err, ErrConflictingState)

	f.clock.Advance(30 * time.Minute)
	result, err = f.svc.Transition(ctx, "emp-1", KindBreakEnd, 40.0, -74.0, "")
	require.NoError(t, err)
	require.NotNil(t, result.Session.BreakEndAt)

	f.clock.Advance(7*time.Hour + 30*time.Minute)
	result, err = f.svc.Transition(ctx, "emp-1", KindPunchOut, 40.0, -74.0, "")
	require.NoError(t, err)

	// 9h on the clock minus the 30m break.
	assert.Equal(t, 8.5, result.Session.WorkedHours(time.Now()))
}

func TestPunchOutClosesUnfinishedBreak(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Transition(ctx, "emp-1", KindBreakStart, 40.0, -74.0, "")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	result, err := f.svc.Transition(ctx, "emp-1", KindPunchOut, 40.0, -74.0, "")
	require.NoError(t, err)

	// The open break is closed at the punch-out instant so the interval never
	// extends past the session.
	require.NotNil(t, result.Session.BreakEndAt)
	assert.Equal(t, *result.Session.PunchOutAt, *result.Session.BreakEndAt)
}

func TestPunchOutAppendsNotes(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, "emp-1", KindPunchIn, 40.0, -74.0, "morning shift")
	require.NoError(t, err)

	f.clock.Advance(8 * time.Hour)
	result, err := f.svc.Transition(ctx, "emp-1", KindPunchOut, 40.0, -74.0, "left early for appointment")
	require.NoError(t, err)

	assert.Equal(t, "morning shift | left early for appointment", result.Session.Notes)
}

func TestUnknownEmployeeRejectedBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Transition(context.Background(), "ghost", KindPunchIn, 40.0, -74.0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEmployee)

	_, err = f.store.FindOpenSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoOpenSession)
}

func TestStatusAndSessions(t *testing.T) {
	f := newFixture(t)
	f.addEmployee("emp-1")
	ctx := context.Background()

	status, err := f.svc.Status(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, StateClockedOut, status.State)
	assert.Nil(t, status.Session)

	dayStart := f.clock.now
	_, err = f.svc.Transition(ctx, "emp-1", KindPunchIn, 40.0, -74.0, "")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	status, err = f.svc.Status(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, StateClockedIn, status.State)
	assert.Equal(t, 2.0, status.WorkedHours)

	_, err = f.svc.Transition(ctx, "emp-1", KindPunchOut, 40.0, -74.0, "")
	require.NoError(t, err)

	sessions, err := f.svc.Sessions(ctx, "emp-1", dayStart, dayStart.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].PunchOutAt)
}
