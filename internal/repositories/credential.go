package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunen/internal/models"
)

// CredentialRepository persists OAuth credentials keyed by session id.
//
// It implements session.Store.
type CredentialRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, now: time.Now}
}

// Get retrieves the credential for a session id.
func (r *CredentialRepository) Get(ctx context.Context, id string) (*models.Credential, bool, error) {
	query := `
		SELECT access_token, refresh_token, token_type, scope, issued_at, expires_in
		FROM credentials
		WHERE session_id = ?
	`

	var cred models.Credential
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cred.AccessToken, &cred.RefreshToken, &cred.TokenType, &cred.Scope, &cred.IssuedAt, &cred.ExpiresIn,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query credential: %w", err)
	}

	return &cred, true, nil
}

// Put inserts or replaces the credential for a session id in a single statement.
func (r *CredentialRepository) Put(ctx context.Context, id string, cred *models.Credential) error {
	if id == "" {
		return fmt.Errorf("empty session id")
	}
	if cred == nil {
		return fmt.Errorf("nil credential")
	}
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := r.now().UTC()
	query := `
		INSERT INTO credentials (session_id, access_token, refresh_token, token_type, scope, issued_at, expires_in, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			issued_at = excluded.issued_at,
			expires_in = excluded.expires_in,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		id, cred.AccessToken, cred.RefreshToken, cred.TokenType, cred.Scope, cred.IssuedAt.UTC(), cred.ExpiresIn, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

// Clear deletes the credential for a session id.
func (r *CredentialRepository) Clear(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// List returns a token-free summary of every stored credential, most recently updated first.
func (r *CredentialRepository) List(ctx context.Context) ([]models.SessionSummary, error) {
	query := `
		SELECT session_id, refresh_token != '', issued_at, expires_in, updated_at
		FROM credentials
		ORDER BY updated_at DESC, session_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var summaries []models.SessionSummary
	for rows.Next() {
		var (
			s         models.SessionSummary
			issuedAt  time.Time
			expiresIn int64
		)
		if err := rows.Scan(&s.SessionID, &s.HasRefreshToken, &issuedAt, &expiresIn, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		s.ExpiresAt = models.Credential{IssuedAt: issuedAt, ExpiresIn: expiresIn}.ExpiresAt()
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summaries, nil
}

// DeleteStale removes credentials not updated since cutoff and returns how many were removed.
func (r *CredentialRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := execAffected(ctx, r.db, "DELETE FROM credentials WHERE updated_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale credentials: %w", err)
	}
	return n, nil
}
