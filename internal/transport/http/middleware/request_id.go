package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"timeclock/internal/platform/requestctx"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches an id to every request, reusing the caller's header
// when present so ids stay stable across proxies.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}
