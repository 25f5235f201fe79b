// package formatter renders stored session summaries as CSV, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tunen/internal/models"
)

// sessionRecord is the exported shape of a [models.SessionSummary].
type sessionRecord struct {
	SessionID       string    `json:"session_id"`
	ExpiresAt       time.Time `json:"expires_at"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SessionsToCSV converts summaries to CSV with columns: SessionID, ExpiresAt, HasRefreshToken, UpdatedAt
func SessionsToCSV(summaries []models.SessionSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SessionID", "ExpiresAt", "HasRefreshToken", "UpdatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range summaries {
		record := []string{
			s.SessionID,
			s.ExpiresAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(s.HasRefreshToken),
			s.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SessionsToJSON converts summaries to a JSON array, indented when pretty is set.
func SessionsToJSON(summaries []models.SessionSummary, pretty bool) ([]byte, error) {
	records := make([]sessionRecord, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, sessionRecord(s))
	}

	if pretty {
		return json.MarshalIndent(records, "", "  ")
	}
	return json.Marshal(records)
}

// SessionsToText converts summaries to one line per session.
func SessionsToText(summaries []models.SessionSummary, now time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Sessions: %d\n\n", len(summaries))
	for i, s := range summaries {
		state := "valid"
		if !now.Before(s.ExpiresAt) {
			state = "expired"
		}
		fmt.Fprintf(&buf, "%d. %s (%s, expires %s)\n", i+1, s.SessionID, state, s.ExpiresAt.UTC().Format(time.RFC3339))
	}

	return buf.Bytes()
}
