package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/domain/auth"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/shared"
)

// Store is the slice of the auth store the login handler needs.
type Store interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Handler struct {
	store     Store
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(store Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token      string `json:"token"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	ExpiresIn  int64  `json:"expiresIn"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", req.Email)
	v.Required("password", req.Password)
	if !v.Valid() {
		shared.FailValidation(w, r, v)
		return
	}

	user, err := h.store.FindActiveUserByEmail(r.Context(), req.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, auth.Claims{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Role:       user.Role,
	}, h.tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "could not issue token", requestID)
		return
	}

	if err := h.store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		log.Printf("update last login for %s: %v", user.ID, err)
	}

	api.Success(w, http.StatusOK, loginResponse{
		Token:      token,
		Role:       user.Role,
		EmployeeID: user.EmployeeID,
		ExpiresIn:  int64(h.tokenTTL.Seconds()),
	}, requestID)
}
