package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// execAffected runs query and returns the number of affected rows.
func execAffected(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// toEpoch converts t into fractional unix seconds, the representation used for expiry columns.
func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
