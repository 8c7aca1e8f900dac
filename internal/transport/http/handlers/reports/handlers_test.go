package reports

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/geofence"
	"timeclock/internal/domain/punch"
	"timeclock/internal/domain/reports"
	"timeclock/internal/transport/http/middleware"
)

func newFixture(t *testing.T) *chi.Mux {
	t.Helper()

	store := punch.NewInMemory()
	store.AddEmployee(punch.Employee{ID: "e1", Name: "Demo Employee", Active: true})

	ctx := t.Context()
	punchIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateIfNoOpenSession(ctx, &punch.Session{
		EmployeeID:   "e1",
		PunchInAt:    punchIn,
		PunchInValid: true,
	}))
	_, err := store.StartBreak(ctx, "e1", punchIn.Add(3*time.Hour))
	require.NoError(t, err)
	_, err = store.EndBreak(ctx, "e1", punchIn.Add(210*time.Minute))
	require.NoError(t, err)
	_, err = store.PunchOut(ctx, "e1", punchIn.Add(510*time.Minute), 40.0, -74.0, true, "")
	require.NoError(t, err)

	service := punch.NewService(store, geofence.NewService(geofence.NewInMemory()), nil)
	router := chi.NewRouter()
	router.Route("/reports", NewHandler(service).Routes)
	return router
}

func get(router *chi.Mux, path string, user *auth.UserContext) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTimesheetJSON(t *testing.T) {
	router := newFixture(t)

	rec := get(router, "/reports/timesheet?from=2026-03-01&to=2026-03-05",
		&auth.UserContext{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee})
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool              `json:"success"`
		Data    reports.Timesheet `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	assert.Equal(t, "e1", env.Data.EmployeeID)
	require.Len(t, env.Data.Days, 1)
	assert.Equal(t, "2026-03-02", env.Data.Days[0].Date)
	assert.Equal(t, 8.0, env.Data.TotalHours)
	assert.Equal(t, 0, env.Data.InvalidPunches)
}

func TestTimesheetPDF(t *testing.T) {
	router := newFixture(t)

	rec := get(router, "/reports/timesheet?from=2026-03-01&to=2026-03-05&format=pdf",
		&auth.UserContext{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestTimesheetAdminCanPickEmployee(t *testing.T) {
	router := newFixture(t)

	rec := get(router, "/reports/timesheet?employeeId=e1&from=2026-03-01&to=2026-03-05",
		&auth.UserContext{UserID: "admin", Role: auth.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTimesheetEmployeeCannotPickOthers(t *testing.T) {
	router := newFixture(t)

	rec := get(router, "/reports/timesheet?employeeId=e2",
		&auth.UserContext{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTimesheetRequiresAuth(t *testing.T) {
	router := newFixture(t)
	rec := get(router, "/reports/timesheet", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
