package main

import (
	"database/sql"
	"fmt"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/desertthunder/tunen/internal/repositories"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
)

// backend holds the stores selected by session.store.
type backend struct {
	db          *sql.DB
	credentials session.Store
	sessions    scs.Store
	repo        *repositories.CredentialRepository // nil for the memory store
	cleaner     *repositories.Cleaner              // nil for the memory store
}

func (b *backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// openDatabase opens the configured SQLite database and applies pending migrations.
func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	if config.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	applied, err := shared.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}

	return db, nil
}

func (r *Runner) openBackend(config *shared.Config) (*backend, error) {
	if config.Session.Store == "memory" {
		return &backend{credentials: session.NewMemoryStore(), sessions: memstore.New()}, nil
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return nil, err
	}

	sessions := repositories.NewSessionRepository(db)
	credentials := repositories.NewCredentialRepository(db)

	return &backend{
		db:          db,
		credentials: credentials,
		sessions:    sessions,
		repo:        credentials,
		cleaner:     repositories.NewCleaner(sessions, credentials, config.Session.Lifetime.Duration),
	}, nil
}
