package punch

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/punch"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/middleware"
	"timeclock/internal/transport/http/shared"
)

const (
	maxNotesLen          = 500
	defaultHistoryDays   = 14
	sessionsMaxRangeDays = 92
)

type Handler struct {
	service *punch.Service
}

func NewHandler(service *punch.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{kind}", h.Transition)
	r.Get("/status", h.Status)
	r.Get("/sessions", h.Sessions)
}

type transitionRequest struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Notes string  `json:"notes"`
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	kind, ok := punch.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "unknown_transition",
			"transition must be one of punch_in, punch_out, break_start, break_end", requestID)
		return
	}

	employeeID, ok := employeeFrom(r)
	if !ok {
		api.Fail(w, http.StatusForbidden, "no_employee_profile",
			"account has no employee profile", requestID)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Latitude("lat", req.Lat)
	v.Longitude("lon", req.Lon)
	v.MaxLen("notes", req.Notes, maxNotesLen)
	if !v.Valid() {
		shared.FailValidation(w, r, v)
		return
	}

	result, err := h.service.Transition(r.Context(), employeeID, kind, req.Lat, req.Lon, req.Notes)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, result, requestID)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	employeeID, ok := employeeFrom(r)
	if !ok {
		api.Fail(w, http.StatusForbidden, "no_employee_profile",
			"account has no employee profile", requestID)
		return
	}

	status, err := h.service.Status(r.Context(), employeeID)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, status, requestID)
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	employeeID, ok := employeeFrom(r)
	if !ok {
		api.Fail(w, http.StatusForbidden, "no_employee_profile",
			"account has no employee profile", requestID)
		return
	}

	from, to, v := shared.DateRange(r, defaultHistoryDays, sessionsMaxRangeDays)
	if !v.Valid() {
		shared.FailValidation(w, r, v)
		return
	}

	sessions, err := h.service.Sessions(r.Context(), employeeID, from, to)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
		"sessions": sessions,
	}, requestID)
}

// fail maps domain errors onto the response envelope. A conflict carries the
// employee's actual state in its message so clients can show it directly.
func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	var conflict *punch.ConflictError
	switch {
	case errors.As(err, &conflict):
		api.FailWithDetails(w, http.StatusConflict, "conflicting_state", conflict.Error(), map[string]any{
			"attempted":    string(conflict.Attempted),
			"currentState": string(conflict.Current),
		}, requestID)
	case errors.Is(err, punch.ErrConflictingState):
		api.Fail(w, http.StatusConflict, "conflicting_state", err.Error(), requestID)
	case errors.Is(err, punch.ErrUnknownEmployee):
		api.Fail(w, http.StatusNotFound, "unknown_employee", "employee not found", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}

func employeeFrom(r *http.Request) (string, bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok || user.EmployeeID == "" {
		return "", false
	}
	return user.EmployeeID, true
}
