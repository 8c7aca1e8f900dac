package punch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/geofence"
	"timeclock/internal/domain/punch"
	"timeclock/internal/transport/http/middleware"
)

const metersPerDegreeLat = 111194.9

type fixture struct {
	router *chi.Mux
	store  *punch.InMemory
	fences *geofence.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := punch.NewInMemory()
	store.AddEmployee(punch.Employee{ID: "e1", Name: "Demo Employee", Active: true})

	fences := geofence.NewInMemory()
	require.NoError(t, fences.Create(t.Context(), &geofence.Geofence{
		ID: "g1", Name: "Head Office", CenterLat: 40.0, CenterLon: -74.0, RadiusM: 150, Active: true,
	}))
	fences.Assign("e1", "g1")

	service := punch.NewService(store, geofence.NewService(fences), nil,
		punch.WithClock(func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }))

	router := chi.NewRouter()
	router.Route("/punch", NewHandler(service).Routes)
	return &fixture{router: router, store: store, fences: fences}
}

func (f *fixture) do(t *testing.T, method, path, body, employeeID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if employeeID != "" {
		ctx := middleware.WithUser(req.Context(), auth.UserContext{
			UserID: "u1", EmployeeID: employeeID, Role: auth.RoleEmployee,
		})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestTransitionPunchInInsideGeofence(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":40.0,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	require.True(t, env.Success)

	var result punch.TransitionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Validation.Valid)
	assert.True(t, result.Session.PunchInValid)
	assert.Equal(t, "e1", result.Session.EmployeeID)
}

func TestTransitionOutsideGeofenceIsRecordedNotBlocked(t *testing.T) {
	f := newFixture(t)

	lat := 40.0 + 250/metersPerDegreeLat
	rec := f.do(t, http.MethodPost, "/punch/punch_in",
		`{"lat":`+formatFloat(lat)+`,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	var result punch.TransitionResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Validation.Valid)
	assert.Contains(t, result.Validation.Message, "beyond boundary of Head Office")
	assert.False(t, result.Session.PunchInValid)
}

func TestTransitionDoublePunchInConflicts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":40.0,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":40.0,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusConflict, rec.Code)

	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "conflicting_state", env.Error.Code)
	assert.Equal(t, "clocked_in", env.Error.Details["currentState"])
}

func TestTransitionUnknownKind(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/punch/lunch_start", `{"lat":40.0,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_transition", decode(t, rec).Error.Code)
}

func TestTransitionRejectsOutOfRangeCoordinates(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":91.0,"lon":-74.0}`, "e1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec).Error.Code)
}

func TestTransitionRequiresEmployeeProfile(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":40.0,"lon":-74.0}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "no_employee_profile", decode(t, rec).Error.Code)
}

func TestStatusReflectsTransitions(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/punch/status", "", "e1")
	require.Equal(t, http.StatusOK, rec.Code)
	var status punch.Status
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &status))
	assert.Equal(t, punch.StateClockedOut, status.State)

	f.do(t, http.MethodPost, "/punch/punch_in", `{"lat":40.0,"lon":-74.0}`, "e1")
	f.do(t, http.MethodPost, "/punch/break_start", `{"lat":40.0,"lon":-74.0}`, "e1")

	rec = f.do(t, http.MethodGet, "/punch/status", "", "e1")
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &status))
	assert.Equal(t, punch.StateOnBreak, status.State)
}

func TestSessionsRejectsMalformedDates(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/punch/sessions?from=03/02/2026", "", "e1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec).Error.Code)
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
