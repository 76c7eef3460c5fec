package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - key-value pairs, calibration among them
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per run of the control loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			sink TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			ticks INTEGER NOT NULL DEFAULT 0
		)`,

		// Journal table - every discrete action and override
		`CREATE TABLE IF NOT EXISTS journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			at DATETIME NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			dx INTEGER NOT NULL DEFAULT 0,
			dy INTEGER NOT NULL DEFAULT 0,
			x INTEGER NOT NULL DEFAULT 0,
			y INTEGER NOT NULL DEFAULT 0,
			origin TEXT NOT NULL DEFAULT 'gesture'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_journal_session_id ON journal(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_at ON journal(at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
