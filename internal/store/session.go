package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the control loop.
type Session struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	Sink      string     `json:"sink"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Ticks     int64      `json:"ticks"`
}

// SessionRepository records control loop runs.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new open session.
func (r *SessionRepository) Start(source, sink string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		Sink:      sink,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, source, sink, started_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.Source, sess.Sink, sess.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// End closes a session and records its tick count.
func (r *SessionRepository) End(id string, ticks int64) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, ticks = ? WHERE id = ?`,
		time.Now().UTC(), ticks, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, source, sink, started_at, ended_at, ticks FROM sessions WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first, at most limit of them.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, source, sink, started_at, ended_at, ticks
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.Source, &sess.Sink, &sess.StartedAt, &ended, &sess.Ticks); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}
