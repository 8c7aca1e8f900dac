package punch

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Employee is the externally-owned entity the punch engine reads. Assignment
// and lifecycle are the user-management collaborator's business.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Store is the persistence seam for punch sessions. Every conditional write
// (create-if-none-open, the punch-out/break updates) is a single indivisible
// operation, so concurrent transitions for the same employee cannot both
// succeed. The Postgres implementation leans on the partial unique index over
// open sessions plus conditional UPDATE statements; the in-memory one
// serializes on a mutex.
type Store interface {
	FindEmployee(ctx context.Context, employeeID string) (*Employee, error)
	FindOpenSession(ctx context.Context, employeeID string) (*Session, error)
	CreateIfNoOpenSession(ctx context.Context, session *Session) error
	PunchOut(ctx context.Context, employeeID string, at time.Time, lat, lon float64, valid bool, notes string) (*Session, error)
	StartBreak(ctx context.Context, employeeID string, at time.Time) (*Session, error)
	EndBreak(ctx context.Context, employeeID string, at time.Time) (*Session, error)
	ListSessions(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error)
}

type PostgresStore struct {
	DB *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: db}
}

const sessionColumns = `id, employee_id, punch_in_at, punch_in_lat, punch_in_lon, punch_in_valid,
       punch_out_at, punch_out_lat, punch_out_lon, punch_out_valid,
       break_start_at, break_end_at, notes, created_at, updated_at`

func (s *PostgresStore) FindEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, active FROM employees WHERE id = $1
  `, employeeID).Scan(&emp.ID, &emp.Name, &emp.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownEmployee
		}
		return nil, err
	}
	return &emp, nil
}

func (s *PostgresStore) FindOpenSession(ctx context.Context, employeeID string) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+sessionColumns+`
    FROM punch_sessions
    WHERE employee_id = $1 AND punch_out_at IS NULL
  `, employeeID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}
	return session, nil
}

// CreateIfNoOpenSession inserts the punch-in row. The partial unique index
// over open sessions makes a second concurrent insert fail, which is surfaced
// as ErrOpenSessionExists rather than retried.
func (s *PostgresStore) CreateIfNoOpenSession(ctx context.Context, session *Session) error {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO punch_sessions (employee_id, punch_in_at, punch_in_lat, punch_in_lon, punch_in_valid, notes)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id, created_at, updated_at
  `, session.EmployeeID, session.PunchInAt, session.PunchInLat, session.PunchInLon, session.PunchInValid, session.Notes).
		Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOpenSessionExists
		}
		return err
	}
	return nil
}

// PunchOut closes the open session in one conditional statement. An open but
// unfinished break is closed at the punch-out instant so the break interval
// never extends past the session. Notes append pipe-separated.
func (s *PostgresStore) PunchOut(ctx context.Context, employeeID string, at time.Time, lat, lon float64, valid bool, notes string) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE punch_sessions
    SET punch_out_at = $2,
        punch_out_lat = $3,
        punch_out_lon = $4,
        punch_out_valid = $5,
        break_end_at = CASE WHEN break_start_at IS NOT NULL AND break_end_at IS NULL THEN $2 ELSE break_end_at END,
        notes = CASE WHEN $6 = '' THEN notes WHEN notes = '' THEN $6 ELSE notes || ' | ' || $6 END,
        updated_at = now()
    WHERE employee_id = $1 AND punch_out_at IS NULL
    RETURNING `+sessionColumns+`
  `, employeeID, at, lat, lon, valid, notes)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}
	return session, nil
}

func (s *PostgresStore) StartBreak(ctx context.Context, employeeID string, at time.Time) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE punch_sessions
    SET break_start_at = $2, updated_at = now()
    WHERE employee_id = $1 AND punch_out_at IS NULL AND break_start_at IS NULL
    RETURNING `+sessionColumns+`
  `, employeeID, at)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The write already failed atomically; re-read only to report why.
			if _, ferr := s.FindOpenSession(ctx, employeeID); errors.Is(ferr, ErrNoOpenSession) {
				return nil, ErrNoOpenSession
			}
			return nil, ErrBreakAlreadyTaken
		}
		return nil, err
	}
	return session, nil
}

func (s *PostgresStore) EndBreak(ctx context.Context, employeeID string, at time.Time) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE punch_sessions
    SET break_end_at = $2, updated_at = now()
    WHERE employee_id = $1 AND punch_out_at IS NULL
      AND break_start_at IS NOT NULL AND break_end_at IS NULL
    RETURNING `+sessionColumns+`
  `, employeeID, at)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, ferr := s.FindOpenSession(ctx, employeeID); errors.Is(ferr, ErrNoOpenSession) {
				return nil, ErrNoOpenSession
			}
			return nil, ErrBreakNotOpen
		}
		return nil, err
	}
	return session, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+sessionColumns+`
    FROM punch_sessions
    WHERE employee_id = $1 AND punch_in_at >= $2 AND punch_in_at < $3
    ORDER BY punch_in_at
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *session)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.PunchInAt, &s.PunchInLat, &s.PunchInLon, &s.PunchInValid,
		&s.PunchOutAt, &s.PunchOutLat, &s.PunchOutLon, &s.PunchOutValid,
		&s.BreakStartAt, &s.BreakEndAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
