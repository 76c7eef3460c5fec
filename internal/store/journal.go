package store

import (
	"database/sql"
	"time"
)

// Entry is one journaled action: a classified gesture or an override.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
	Kind      string    `json:"kind"`
	Mode      string    `json:"mode"`
	DX        int       `json:"dx,omitempty"`
	DY        int       `json:"dy,omitempty"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	// Origin is "gesture" or the override origin ("keyboard", "tray", "http").
	Origin string `json:"origin"`
}

// JournalRepository appends and reads journal entries.
type JournalRepository struct {
	db *sql.DB
}

// Journal returns the journal repository for this store.
func (s *Store) Journal() *JournalRepository {
	return &JournalRepository{db: s.db}
}

// Append inserts e and sets its ID.
func (r *JournalRepository) Append(e *Entry) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.Origin == "" {
		e.Origin = "gesture"
	}

	result, err := r.db.Exec(
		`INSERT INTO journal (session_id, at, kind, mode, dx, dy, x, y, origin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.At, e.Kind, e.Mode, e.DX, e.DY, e.X, e.Y, e.Origin,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *JournalRepository) Recent(limit int) ([]Entry, error) {
	return r.query(
		`SELECT id, session_id, at, kind, mode, dx, dy, x, y, origin
		 FROM journal ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// BySession returns every entry of one session in insertion order.
func (r *JournalRepository) BySession(sessionID string) ([]Entry, error) {
	return r.query(
		`SELECT id, session_id, at, kind, mode, dx, dy, x, y, origin
		 FROM journal WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
}

func (r *JournalRepository) query(q string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.At, &e.Kind, &e.Mode, &e.DX, &e.DY, &e.X, &e.Y, &e.Origin); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
