package geofence

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"timeclock/internal/domain/geofence"
	"timeclock/internal/platform/requestctx"
	"timeclock/internal/transport/http/api"
	"timeclock/internal/transport/http/shared"
)

const maxNameLen = 120

type Handler struct {
	service *geofence.Service
}

func NewHandler(service *geofence.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{geofenceID}", h.Get)
	r.Put("/{geofenceID}", h.Update)
	r.Delete("/{geofenceID}", h.Delete)
}

type geofenceRequest struct {
	Name      string  `json:"name"`
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	RadiusM   float64 `json:"radiusMeters"`
	Active    *bool   `json:"active"`
}

// payload carries the saved geofence plus overlap warnings. Overlap never
// blocks the write; it is surfaced for the admin to review.
type payload struct {
	Geofence *geofence.Geofence `json:"geofence"`
	Overlaps []geofence.Overlap `json:"overlaps,omitempty"`
	Warning  string             `json:"warning,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())
	list, err := h.service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
		return
	}
	api.Success(w, http.StatusOK, list, requestID)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())
	gf, err := h.service.Get(r.Context(), chi.URLParam(r, "geofenceID"))
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, gf, requestID)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	gf := &geofence.Geofence{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CenterLat: req.CenterLat,
		CenterLon: req.CenterLon,
		RadiusM:   req.RadiusM,
		Active:    true,
	}
	if req.Active != nil {
		gf.Active = *req.Active
	}

	overlaps, err := h.service.Create(r.Context(), gf)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Created(w, h.payload(gf, overlaps), requestID)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	gf := &geofence.Geofence{
		ID:        chi.URLParam(r, "geofenceID"),
		Name:      req.Name,
		CenterLat: req.CenterLat,
		CenterLon: req.CenterLon,
		RadiusM:   req.RadiusM,
		Active:    true,
	}
	if req.Active != nil {
		gf.Active = *req.Active
	}

	overlaps, err := h.service.Update(r.Context(), gf)
	if err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, h.payload(gf, overlaps), requestID)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestID(r.Context())
	if err := h.service.SoftDelete(r.Context(), chi.URLParam(r, "geofenceID")); err != nil {
		h.fail(w, err, requestID)
		return
	}
	api.Success(w, http.StatusOK, nil, requestID)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (geofenceRequest, bool) {
	requestID := requestctx.RequestID(r.Context())

	var req geofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON", requestID)
		return req, false
	}

	v := shared.NewValidator()
	v.Required("name", req.Name)
	v.MaxLen("name", req.Name, maxNameLen)
	v.Latitude("centerLat", req.CenterLat)
	v.Longitude("centerLon", req.CenterLon)
	v.Radius("radiusMeters", req.RadiusM)
	if !v.Valid() {
		shared.FailValidation(w, r, v)
		return req, false
	}
	return req, true
}

func (h *Handler) payload(gf *geofence.Geofence, overlaps []geofence.Overlap) payload {
	out := payload{Geofence: gf, Overlaps: overlaps}
	if len(overlaps) > 0 {
		out.Warning = "geofence overlaps existing active geofences"
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, geofence.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "geofence not found", requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
}
