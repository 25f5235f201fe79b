package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tunen/internal/formatter"
	"github.com/desertthunder/tunen/internal/shared"
	"github.com/desertthunder/tunen/internal/ui"
	"github.com/urfave/cli/v3"
)

// SessionsList prints every persisted credential without token values.
func (r *Runner) SessionsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := r.persistentBackend(config)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.repo.List(ctx)
	if err != nil {
		return err
	}

	switch format := strings.ToLower(cmd.String("format")); format {
	case "json":
		data, err := formatter.SessionsToJSON(summaries, cmd.Bool("pretty"))
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return r.writeBytes(append(data, '\n'))
	case "csv":
		data, err := formatter.SessionsToCSV(summaries)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case "text":
		return r.writeBytes(formatter.SessionsToText(summaries, r.now()))
	case "table", "":
		if len(summaries) == 0 {
			return r.writePlain("%s\n", ui.Styles.Help("No stored sessions."))
		}
		return r.writePlain("%s\n", ui.SessionsTable(summaries, r.now()))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// SessionsPurge runs one cleanup pass.
func (r *Runner) SessionsPurge(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := r.persistentBackend(config)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, credentials, err := store.cleaner.Purge(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}

	r.logger.Info("purge complete", "sessions", sessions, "credentials", credentials)
	return r.writePlain("%s Removed %d expired sessions and %d stale credentials\n", ui.Styles.OK("✓"), sessions, credentials)
}

// persistentBackend opens the SQLite backend, rejecting the memory store which does not outlive the server.
func (r *Runner) persistentBackend(config *shared.Config) (*backend, error) {
	if config.Session.Store != "sqlite" {
		return nil, fmt.Errorf("%w: sessions are only persisted with session.store = \"sqlite\"", shared.ErrInvalidConfig)
	}
	return r.openBackend(config)
}
