package middleware

import (
	"context"
	"net/http"
	"strings"

	"timeclock/internal/domain/auth"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
)

type ctxKey int

const userKey ctxKey = iota

// Auth validates the bearer token and attaches the authenticated user to
// the request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				api.Fail(w, http.StatusUnauthorized, "unauthorized",
					"missing bearer token", requestctx.RequestID(r.Context()))
				return
			}

			claims, err := auth.ParseToken(jwtSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized",
					"invalid or expired token", requestctx.RequestID(r.Context()))
				return
			}

			user := auth.UserContext{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Role:       claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// RequireRole gates a route on the authenticated user's role. Admins pass
// every check.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized",
					"authentication required", requestctx.RequestID(r.Context()))
				return
			}
			if user.Role != role && user.Role != auth.RoleAdmin {
				api.Fail(w, http.StatusForbidden, "forbidden",
					"insufficient permissions", requestctx.RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFrom(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(userKey).(auth.UserContext)
	return user, ok
}

// WithUser is a test hook for handler tests that bypass the middleware.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, userKey, user)
}
