package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/desertthunder/tunen/internal/models"
	"github.com/desertthunder/tunen/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Put And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		cred := &models.Credential{
			AccessToken:  "AT1",
			RefreshToken: "RT1",
			TokenType:    "Bearer",
			Scope:        "user-read-private",
			IssuedAt:     issued,
			ExpiresIn:    3600,
		}

		if err := repo.Put(ctx, "sid-1", cred); err != nil {
			t.Fatalf("failed to put credential: %v", err)
		}

		got, found, err := repo.Get(ctx, "sid-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if !found {
			t.Fatal("expected credential to be found")
		}
		if got.AccessToken != "AT1" || got.RefreshToken != "RT1" {
			t.Errorf("unexpected tokens: %+v", got)
		}
		if got.ExpiresIn != 3600 {
			t.Errorf("expected expires_in 3600, got %d", got.ExpiresIn)
		}
		if !got.IssuedAt.Equal(issued) {
			t.Errorf("expected issued_at %v, got %v", issued, got.IssuedAt)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		got, found, err := NewCredentialRepository(db).Get(ctx, "nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found || got != nil {
			t.Errorf("expected no credential, got %+v", got)
		}
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		first := &models.Credential{AccessToken: "AT1", RefreshToken: "RT1", IssuedAt: issued, ExpiresIn: 3600}
		second := &models.Credential{AccessToken: "AT2", RefreshToken: "RT1", IssuedAt: issued.Add(time.Hour), ExpiresIn: 1800}

		if err := repo.Put(ctx, "sid-1", first); err != nil {
			t.Fatalf("failed to put first credential: %v", err)
		}
		if err := repo.Put(ctx, "sid-1", second); err != nil {
			t.Fatalf("failed to put second credential: %v", err)
		}

		got, _, err := repo.Get(ctx, "sid-1")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if got.AccessToken != "AT2" || got.ExpiresIn != 1800 {
			t.Errorf("expected overwritten credential, got %+v", got)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM credentials").Scan(&count); err != nil {
			t.Fatalf("failed to count credentials: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}
	})

	t.Run("Put Validation", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		tests := []struct {
			name string
			id   string
			cred *models.Credential
		}{
			{"empty id", "", &models.Credential{AccessToken: "AT", IssuedAt: issued}},
			{"nil credential", "sid", nil},
			{"missing access token", "sid", &models.Credential{IssuedAt: issued}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := repo.Put(ctx, tt.id, tt.cred); err == nil {
					t.Error("expected error")
				}
			})
		}
	})

	t.Run("Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		cred := &models.Credential{AccessToken: "AT1", IssuedAt: issued, ExpiresIn: 3600}
		if err := repo.Put(ctx, "sid-1", cred); err != nil {
			t.Fatalf("failed to put credential: %v", err)
		}

		if err := repo.Clear(ctx, "sid-1"); err != nil {
			t.Fatalf("failed to clear credential: %v", err)
		}
		if _, found, _ := repo.Get(ctx, "sid-1"); found {
			t.Error("expected credential to be cleared")
		}
		if err := repo.Clear(ctx, "sid-1"); err != nil {
			t.Errorf("clearing a missing credential should not fail: %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		repo.now = fixedClock(issued)
		if err := repo.Put(ctx, "sid-a", &models.Credential{AccessToken: "A", RefreshToken: "R", IssuedAt: issued, ExpiresIn: 60}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		repo.now = fixedClock(issued.Add(time.Minute))
		if err := repo.Put(ctx, "sid-b", &models.Credential{AccessToken: "B", IssuedAt: issued, ExpiresIn: 120}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		summaries, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(summaries))
		}
		if summaries[0].SessionID != "sid-b" {
			t.Errorf("expected most recently updated first, got %s", summaries[0].SessionID)
		}
		if summaries[0].HasRefreshToken {
			t.Error("sid-b has no refresh token")
		}
		if !summaries[1].HasRefreshToken {
			t.Error("sid-a has a refresh token")
		}
		if want := issued.Add(2 * time.Minute); !summaries[0].ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, summaries[0].ExpiresAt)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Commit And Find", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.now = fixedClock(now)

		if err := repo.Commit("tok", []byte("data"), now.Add(time.Hour)); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		data, found, err := repo.Find("tok")
		if err != nil {
			t.Fatalf("failed to find: %v", err)
		}
		if !found || !bytes.Equal(data, []byte("data")) {
			t.Errorf("expected data, got found=%v data=%q", found, data)
		}
	})

	t.Run("Commit Replaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.now = fixedClock(now)

		_ = repo.Commit("tok", []byte("old"), now.Add(time.Hour))
		if err := repo.Commit("tok", []byte("new"), now.Add(time.Hour)); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		data, _, _ := repo.Find("tok")
		if string(data) != "new" {
			t.Errorf("expected replaced data, got %q", data)
		}
	})

	t.Run("Expired Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.now = fixedClock(now)

		if err := repo.Commit("tok", []byte("data"), now.Add(-time.Second)); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		if _, found, err := repo.Find("tok"); err != nil || found {
			t.Errorf("expected expired session to be hidden, found=%v err=%v", found, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.now = fixedClock(now)
		_ = repo.Commit("tok", []byte("data"), now.Add(time.Hour))

		if err := repo.Delete("tok"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, found, _ := repo.Find("tok"); found {
			t.Error("expected session to be deleted")
		}
	})

	t.Run("All", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSessionRepository(db)
		repo.now = fixedClock(now)
		_ = repo.Commit("live", []byte("a"), now.Add(time.Hour))
		_ = repo.Commit("dead", []byte("b"), now.Add(-time.Hour))

		all, err := repo.All()
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 live session, got %d", len(all))
		}
		if _, ok := all["live"]; !ok {
			t.Error("expected live session in result")
		}
	})
}

func TestCleaner(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	db := setupTestDB(t)
	defer db.Close()

	sessions := NewSessionRepository(db)
	sessions.now = fixedClock(now)
	credentials := NewCredentialRepository(db)

	_ = sessions.Commit("live", []byte("a"), now.Add(time.Hour))
	_ = sessions.Commit("dead", []byte("b"), now.Add(-time.Hour))

	credentials.now = fixedClock(now.Add(-48 * time.Hour))
	if err := credentials.Put(ctx, "old", &models.Credential{AccessToken: "A", IssuedAt: now, ExpiresIn: 60}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}
	credentials.now = fixedClock(now)
	if err := credentials.Put(ctx, "fresh", &models.Credential{AccessToken: "B", IssuedAt: now, ExpiresIn: 60}); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	cleaner := NewCleaner(sessions, credentials, 24*time.Hour)
	cleaner.now = fixedClock(now)

	s, c, err := cleaner.Purge(ctx)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if s != 1 {
		t.Errorf("expected 1 expired session removed, got %d", s)
	}
	if c != 1 {
		t.Errorf("expected 1 stale credential removed, got %d", c)
	}

	if _, found, _ := credentials.Get(ctx, "fresh"); !found {
		t.Error("fresh credential should survive purge")
	}

	t.Run("Start Rejects Bad Interval", func(t *testing.T) {
		if err := cleaner.Start(ctx, 0, shared.NewLogger(nil)); err == nil {
			t.Error("expected error for zero interval")
		}
	})
}
