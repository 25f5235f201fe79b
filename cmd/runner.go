package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunen/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	getenv     func(string) string
	now        func() time.Time
	endpoint   oauth2.Endpoint // zero value selects Spotify's accounts service
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from the --config file and the environment on first use.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Getenv     func(string) string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		getenv:     opts.Getenv,
		now:        time.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, sessionsCommand, spotifyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file named by --config (defaults when absent), applies environment overrides and configures the logger.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	configPath := cmd.String("config")
	config := shared.DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	if err := config.ApplyEnv(r.getenv); err != nil {
		return nil, err
	}
	if err := shared.ConfigureLogger(r.logger, config.Log); err != nil {
		return nil, err
	}

	r.config = config
	return config, nil
}

func (r *Runner) writeBytes(b []byte) error {
	if _, err := r.output.Write(b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.writeBytes([]byte(fmt.Sprintf(format, args...)))
}
