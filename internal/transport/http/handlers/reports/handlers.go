package reports

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/auth"
	"timeclock/internal/domain/punch"
	"timeclock/internal/domain/reports"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/middleware"
	"timeclock/internal/transport/http/shared"
)

const (
	defaultPeriodDays = 14
	maxPeriodDays     = 92
)

type Handler struct {
	punches *punch.Service
	now     func() time.Time
}

func NewHandler(punches *punch.Service) *Handler {
	return &Handler{punches: punches, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/timesheet", h.Timesheet)
}

// Timesheet builds a per-day worked-hours report. Employees get their own
// report; admins may pass employeeId to report on anyone. format=pdf switches
// the response from the JSON envelope to a rendered document.
func (h *Handler) Timesheet(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	employeeID := user.EmployeeID
	if requested := r.URL.Query().Get("employeeId"); requested != "" && requested != employeeID {
		if user.Role != auth.RoleAdmin {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot report on another employee", requestID)
			return
		}
		employeeID = requested
	}
	if employeeID == "" {
		api.Fail(w, http.StatusForbidden, "no_employee_profile", "account has no employee profile", requestID)
		return
	}

	from, to, v := shared.DateRange(r, defaultPeriodDays, maxPeriodDays)
	if !v.Valid() {
		shared.FailValidation(w, r, v)
		return
	}

	emp, err := h.punches.Employee(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, punch.ErrUnknownEmployee) {
			api.Fail(w, http.StatusNotFound, "unknown_employee", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}

	sessions, err := h.punches.Sessions(r.Context(), employeeID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}

	ts := reports.BuildTimesheet(emp, sessions, from, to, h.now().UTC())

	if r.URL.Query().Get("format") == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="timesheet-%s.pdf"`, from.Format("2006-01-02")))
		if err := reports.RenderPDF(ts, w); err != nil {
			api.Fail(w, http.StatusInternalServerError, "internal_error", "could not render PDF", requestID)
		}
		return
	}

	api.Success(w, http.StatusOK, ts, requestID)
}
