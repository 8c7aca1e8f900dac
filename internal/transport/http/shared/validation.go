package shared

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"timeclock/internal/domain/geofence"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
)

// Validator accumulates field errors so a response can report every
// problem at once.
type Validator struct {
	issues map[string]string
}

func NewValidator() *Validator {
	return &Validator{issues: map[string]string{}}
}

func (v *Validator) Add(field, message string) {
	if _, exists := v.issues[field]; !exists {
		v.issues[field] = message
	}
}

func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func (v *Validator) UUID(field, value string) {
	if value == "" {
		return
	}
	if _, err := uuid.Parse(value); err != nil {
		v.Add(field, "must be a valid UUID")
	}
}

func (v *Validator) Latitude(field string, value float64) {
	if value < -90 || value > 90 {
		v.Add(field, "must be between -90 and 90")
	}
}

func (v *Validator) Longitude(field string, value float64) {
	if value < -180 || value > 180 {
		v.Add(field, "must be between -180 and 180")
	}
}

func (v *Validator) Radius(field string, value float64) {
	if value < geofence.MinRadiusMeters || value > geofence.MaxRadiusMeters {
		v.Add(field, fmt.Sprintf("must be between %d and %d meters",
			int(geofence.MinRadiusMeters), int(geofence.MaxRadiusMeters)))
	}
}

func (v *Validator) MaxLen(field, value string, limit int) {
	if len(value) > limit {
		v.Add(field, fmt.Sprintf("must be at most %d characters", limit))
	}
}

// Date parses a YYYY-MM-DD value, recording an issue when it is malformed.
func (v *Validator) Date(field, value string) (time.Time, bool) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		v.Add(field, "must be a date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func (v *Validator) Valid() bool {
	return len(v.issues) == 0
}

func (v *Validator) Issues() map[string]string {
	return v.issues
}

// FailValidation writes the standard 400 envelope for an invalid payload.
func FailValidation(w http.ResponseWriter, r *http.Request, v *Validator) {
	fields := make(map[string]any, len(v.issues))
	for field, message := range v.issues {
		fields[field] = message
	}
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error",
		"payload validation failed", map[string]any{"fields": fields},
		requestctx.RequestID(r.Context()))
}
