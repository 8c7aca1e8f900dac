package punch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemory keeps employees and punch sessions in memory. One mutex covers
// every conditional write, which gives the same check-and-write atomicity the
// Postgres store gets from its partial unique index.
type InMemory struct {
	mu        sync.Mutex
	employees map[string]*Employee
	sessions  map[string]*Session
}

func NewInMemory() *InMemory {
	return &InMemory{
		employees: make(map[string]*Employee),
		sessions:  make(map[string]*Session),
	}
}

// AddEmployee registers an employee row, standing in for the user-management
// collaborator that owns employees in Postgres.
func (s *InMemory) AddEmployee(emp Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = &emp
}

func (s *InMemory) FindEmployee(_ context.Context, employeeID string) (*Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp, ok := s.employees[employeeID]
	if !ok {
		return nil, ErrUnknownEmployee
	}
	clone := *emp
	return &clone, nil
}

func (s *InMemory) FindOpenSession(_ context.Context, employeeID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.openSessionLocked(employeeID)
	if open == nil {
		return nil, ErrNoOpenSession
	}
	clone := *open
	return &clone, nil
}

func (s *InMemory) CreateIfNoOpenSession(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openSessionLocked(session.EmployeeID) != nil {
		return ErrOpenSessionExists
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *InMemory) PunchOut(_ context.Context, employeeID string, at time.Time, lat, lon float64, valid bool, notes string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.openSessionLocked(employeeID)
	if open == nil {
		return nil, ErrNoOpenSession
	}
	outAt := at
	open.PunchOutAt = &outAt
	open.PunchOutLat = &lat
	open.PunchOutLon = &lon
	open.PunchOutValid = &valid
	if open.BreakStartAt != nil && open.BreakEndAt == nil {
		open.BreakEndAt = &outAt
	}
	if notes != "" {
		if open.Notes == "" {
			open.Notes = notes
		} else {
			open.Notes = open.Notes + " | " + notes
		}
	}
	open.UpdatedAt = time.Now().UTC()
	clone := *open
	return &clone, nil
}

func (s *InMemory) StartBreak(_ context.Context, employeeID string, at time.Time) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.openSessionLocked(employeeID)
	if open == nil {
		return nil, ErrNoOpenSession
	}
	if open.BreakStartAt != nil {
		return nil, ErrBreakAlreadyTaken
	}
	startAt := at
	open.BreakStartAt = &startAt
	open.UpdatedAt = time.Now().UTC()
	clone := *open
	return &clone, nil
}

func (s *InMemory) EndBreak(_ context.Context, employeeID string, at time.Time) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open := s.openSessionLocked(employeeID)
	if open == nil {
		return nil, ErrNoOpenSession
	}
	if open.BreakStartAt == nil || open.BreakEndAt != nil {
		return nil, ErrBreakNotOpen
	}
	endAt := at
	open.BreakEndAt = &endAt
	open.UpdatedAt = time.Now().UTC()
	clone := *open
	return &clone, nil
}

func (s *InMemory) ListSessions(_ context.Context, employeeID string, from, to time.Time) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Session
	for _, session := range s.sessions {
		if session.EmployeeID != employeeID {
			continue
		}
		if session.PunchInAt.Before(from) || !session.PunchInAt.Before(to) {
			continue
		}
		out = append(out, *session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PunchInAt.Before(out[j].PunchInAt) })
	return out, nil
}

func (s *InMemory) openSessionLocked(employeeID string) *Session {
	for _, session := range s.sessions {
		if session.EmployeeID == employeeID && session.PunchOutAt == nil {
			return session
		}
	}
	return nil
}
