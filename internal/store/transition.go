package store

import (
	"database/sql"
	"time"
)

// Transition is a state change recorded during a session.
type Transition struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Category  string    `json:"category"`
	State     string    `json:"state"`
	At        time.Time `json:"at"`
}

// TransitionRepository stores state transitions.
type TransitionRepository struct {
	db *sql.DB
}

// Transitions returns the transition repository for this store.
func (s *Store) Transitions() *TransitionRepository {
	return &TransitionRepository{db: s.db}
}

// Add inserts transitions for a session in a single transaction.
func (r *TransitionRepository) Add(sessionID string, transitions []Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO state_transitions (session_id, category, state, at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range transitions {
		if _, err := stmt.Exec(sessionID, t.Category, t.State, t.At); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession returns a session's transitions in the order they happened.
func (r *TransitionRepository) ListBySession(sessionID string) ([]Transition, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, category, state, at
		 FROM state_transitions
		 WHERE session_id = ?
		 ORDER BY at, id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []Transition
	for rows.Next() {
		var t Transition
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Category, &t.State, &t.At); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transitions, nil
}
