package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per analytics session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			service_version TEXT NOT NULL DEFAULT '',
			plugins TEXT NOT NULL DEFAULT ''
		)`,

		// Tracking, presence and zone transitions seen during a session
		`CREATE TABLE IF NOT EXISTS state_transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			category TEXT NOT NULL CHECK(category IN ('tracking', 'presence', 'zone')),
			state TEXT NOT NULL,
			at DATETIME NOT NULL
		)`,

		// Delivered input actions per interaction and input type
		`CREATE TABLE IF NOT EXISTS interaction_counts (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			interaction_type TEXT NOT NULL,
			input_type TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (session_id, interaction_type, input_type)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_state_transitions_session_id ON state_transitions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
