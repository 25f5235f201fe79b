package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tunen/internal/models"
)

func TestSessionsTable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	summaries := []models.SessionSummary{
		{SessionID: "sid-valid", ExpiresAt: now.Add(time.Hour), HasRefreshToken: true, UpdatedAt: now},
		{SessionID: "sid-expired", ExpiresAt: now.Add(-time.Hour), UpdatedAt: now},
	}

	out := SessionsTable(summaries, now)

	for _, want := range []string{"SESSION", "sid-valid", "sid-expired", "valid", "expired", "yes", "no"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette("#000000", "#000000", "#000000", "#000000", "#000000")
	for _, s := range []string{p.Title("t"), p.OK("ok"), p.Err("e"), p.Warn("w"), p.Help("h")} {
		if s == "" {
			t.Error("expected rendered text")
		}
	}
}
