// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
		Sources: cli.EnvVars("TUNEN_CONFIG"),
	}
}

// serveCommand starts the HTTP proxy
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the OAuth session proxy",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (host:port), overrides server.host and server.port",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes the config file and prepares the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create configuration and initialize the database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the bundled example",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Run database migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// sessionsCommand inspects and cleans up persisted sessions
func sessionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Inspect stored sessions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored credentials without token values",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: table, text, json or csv",
						Value: "table",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.SessionsList,
			},
			{
				Name:   "purge",
				Usage:  "Delete expired sessions and orphaned credentials",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SessionsPurge,
			},
		},
	}
}

// spotifyCommand handles Spotify credential checks
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify application operations",
		Commands: []*cli.Command{
			{
				Name:   "token",
				Usage:  "Fetch an app-only token to verify client credentials",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyToken,
			},
		},
	}
}
