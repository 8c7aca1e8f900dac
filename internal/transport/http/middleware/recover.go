package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
)

// Recoverer turns a panicking handler into a 500 response instead of
// tearing down the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic recovered: %v\n%s", rec, debug.Stack())
				api.Fail(w, http.StatusInternalServerError, "internal_error",
					"internal server error", requestctx.RequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
