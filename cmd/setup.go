package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tunen/internal/shared"
	"github.com/desertthunder/tunen/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the bundled example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("%s %s\n", ui.Styles.OK("✓"), "Configuration written to "+configPath)
	r.writePlain("%s\n", ui.Styles.Help("Set spotify.client_id, spotify.client_secret and session.secret before running 'tunen serve'."))
	return nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s %s\n", ui.Styles.OK("✓"), "Database ready at "+config.Database.Path)
	return nil
}
