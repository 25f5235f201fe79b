package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionRepository stores scs session data in SQLite.
//
// It implements scs.Store and scs.IterableStore.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Find returns the data for an unexpired session token.
func (r *SessionRepository) Find(token string) ([]byte, bool, error) {
	var data []byte
	err := r.db.QueryRow(
		"SELECT data FROM sessions WHERE token = ? AND expiry > ?", token, toEpoch(r.now()),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query session: %w", err)
	}
	return data, true, nil
}

// Commit inserts or replaces the session data for token.
func (r *SessionRepository) Commit(token string, b []byte, expiry time.Time) error {
	_, err := r.db.Exec(
		"REPLACE INTO sessions (token, data, expiry) VALUES (?, ?, ?)", token, b, toEpoch(expiry),
	)
	if err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Delete removes the session for token.
func (r *SessionRepository) Delete(token string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// All returns the data of every unexpired session keyed by token.
func (r *SessionRepository) All() (map[string][]byte, error) {
	rows, err := r.db.Query("SELECT token, data FROM sessions WHERE expiry > ?", toEpoch(r.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make(map[string][]byte)
	for rows.Next() {
		var (
			token string
			data  []byte
		)
		if err := rows.Scan(&token, &data); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions[token] = data
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

// DeleteExpired removes sessions whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := execAffected(ctx, r.db, "DELETE FROM sessions WHERE expiry <= ?", toEpoch(r.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
