package store

import "database/sql"

// Count is how many input actions of one kind a session delivered.
type Count struct {
	InteractionType string `json:"interactionType"`
	InputType       string `json:"inputType"`
	Count           int64  `json:"count"`
}

// CountRepository stores per-session input action counts.
type CountRepository struct {
	db *sql.DB
}

// Counts returns the count repository for this store.
func (s *Store) Counts() *CountRepository {
	return &CountRepository{db: s.db}
}

// Add increments the session's counts by the given amounts.
func (r *CountRepository) Add(sessionID string, counts []Count) error {
	if len(counts) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO interaction_counts (session_id, interaction_type, input_type, count)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (session_id, interaction_type, input_type)
		 DO UPDATE SET count = count + excluded.count`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range counts {
		if _, err := stmt.Exec(sessionID, c.InteractionType, c.InputType, c.Count); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession returns a session's counts ordered by interaction then input type.
func (r *CountRepository) ListBySession(sessionID string) ([]Count, error) {
	rows, err := r.db.Query(
		`SELECT interaction_type, input_type, count
		 FROM interaction_counts
		 WHERE session_id = ?
		 ORDER BY interaction_type, input_type`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.InteractionType, &c.InputType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Total returns the number of input actions a session delivered.
func (r *CountRepository) Total(sessionID string) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`SELECT SUM(count) FROM interaction_counts WHERE session_id = ?`, sessionID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
