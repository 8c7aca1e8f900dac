package punch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"timeclock/internal/domain/geofence"
	"timeclock/internal/platform/metrics"
)

// Service orchestrates a punch transition: resolve the assigned geofence,
// validate the reported location, apply the state transition atomically
// through the store, and return the persisted session plus the verdict.
type Service struct {
	store     Store
	geofences *geofence.Service
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, geofences *geofence.Service, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:     store,
		geofences: geofences,
		metrics:   m,
		tracer:    otel.Tracer("timeclock/punch"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transition applies one punch state transition for the employee. The
// location verdict is advisory: a punch outside the geofence is recorded with
// its validity flag set to false, never blocked. A transition whose
// precondition does not hold is rejected with a ConflictError and performs no
// mutation.
func (s *Service) Transition(ctx context.Context, employeeID string, kind Kind, lat, lon float64, notes string) (*TransitionResult, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "punch.transition",
		trace.WithAttributes(attribute.String("punch.kind", string(kind))))
	defer span.End()

	result, err := s.transition(ctx, employeeID, kind, lat, lon, notes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		outcome := "error"
		if errors.Is(err, ErrConflictingState) {
			outcome = "conflict"
		}
		s.metrics.ObserveTransition(string(kind), outcome, start)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("punch.location_valid", result.Validation.Valid))
	s.metrics.ObserveTransition(string(kind), "ok", start)
	if !result.Validation.Valid {
		s.metrics.IncGeofenceViolation()
	}
	return result, nil
}

func (s *Service) transition(ctx context.Context, employeeID string, kind Kind, lat, lon float64, notes string) (*TransitionResult, error) {
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	gf, err := s.geofences.AssignedTo(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	verdict := geofence.Validate(lat, lon, gf)

	now := s.now().UTC()
	notes = strings.TrimSpace(notes)

	var session *Session
	switch kind {
	case KindPunchIn:
		session = &Session{
			EmployeeID:   employeeID,
			PunchInAt:    now,
			PunchInLat:   lat,
			PunchInLon:   lon,
			PunchInValid: verdict.Valid,
			Notes:        notes,
		}
		if err := s.store.CreateIfNoOpenSession(ctx, session); err != nil {
			if errors.Is(err, ErrOpenSessionExists) {
				return nil, s.conflict(ctx, employeeID, kind)
			}
			return nil, err
		}
	case KindPunchOut:
		session, err = s.store.PunchOut(ctx, employeeID, now, lat, lon, verdict.Valid, notes)
	case KindBreakStart:
		session, err = s.store.StartBreak(ctx, employeeID, now)
	case KindBreakEnd:
		session, err = s.store.EndBreak(ctx, employeeID, now)
	default:
		return nil, fmt.Errorf("unsupported transition kind %q", kind)
	}

	if err != nil {
		if errors.Is(err, ErrNoOpenSession) || errors.Is(err, ErrBreakAlreadyTaken) || errors.Is(err, ErrBreakNotOpen) {
			return nil, s.conflict(ctx, employeeID, kind)
		}
		return nil, err
	}

	return &TransitionResult{Session: session, Validation: verdict}, nil
}

// conflict builds the rejection from the employee's actual current state. The
// re-read happens after the failed conditional write and is for reporting
// only; the invariant is protected by the store, not by this lookup.
func (s *Service) conflict(ctx context.Context, employeeID string, attempted Kind) error {
	current := StateClockedOut
	var openedAt *time.Time
	if open, err := s.store.FindOpenSession(ctx, employeeID); err == nil {
		current = DeriveState(open)
		openedAt = &open.PunchInAt
	}
	return &ConflictError{Attempted: attempted, Current: current, OpenedAt: openedAt}
}

// Status reports the employee's derived state and, for an open session, hours
// worked so far computed against now. Nothing is persisted.
func (s *Service) Status(ctx context.Context, employeeID string) (*Status, error) {
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	open, err := s.store.FindOpenSession(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrNoOpenSession) {
			return &Status{State: StateClockedOut}, nil
		}
		return nil, err
	}

	return &Status{
		State:       DeriveState(open),
		Session:     open,
		WorkedHours: open.WorkedHours(s.now().UTC()),
	}, nil
}

// Employee resolves the employee record behind an id.
func (s *Service) Employee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := s.store.FindEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}
	return *emp, nil
}

// Sessions returns the employee's punch history for [from, to).
func (s *Service) Sessions(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error) {
	if _, err := s.store.FindEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.ListSessions(ctx, employeeID, from, to)
}
