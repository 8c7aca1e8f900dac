package shared

import (
	"net/http"
	"time"
)

// DateRange reads the optional from/to query parameters (YYYY-MM-DD) and
// returns a [from, to) window. Missing bounds default to the last
// defaultDays days ending tomorrow, so today's sessions are included.
func DateRange(r *http.Request, defaultDays, maxDays int) (time.Time, time.Time, *Validator) {
	v := NewValidator()
	now := time.Now().UTC()

	to := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			to = parsed.Add(24 * time.Hour)
		}
	}

	from := to.AddDate(0, 0, -defaultDays)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			from = parsed
		}
	}

	if !v.Valid() {
		return from, to, v
	}
	if !from.Before(to) {
		v.Add("from", "must be before to")
	}
	if to.Sub(from) > time.Duration(maxDays)*24*time.Hour {
		v.Add("to", "range is too large")
	}
	return from, to, v
}
