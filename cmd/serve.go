package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/desertthunder/tunen/internal/models"
	"github.com/desertthunder/tunen/internal/server"
	"github.com/desertthunder/tunen/internal/services"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the proxy until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("%w: --addr %q: %v", shared.ErrInvalidArgument, addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: --addr port %q", shared.ErrInvalidArgument, port)
		}
		config.Server.Host, config.Server.Port = host, p
	}

	if err := config.Validate(); err != nil {
		return err
	}
	if !config.Session.Secure {
		r.logger.Warn("session cookies are not marked secure; use only for local development")
	}

	store, err := r.openBackend(config)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := r.buildServer(config, store)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if store.cleaner != nil && config.Session.CleanupInterval.Duration > 0 {
		if err := store.cleaner.Start(ctx, config.Session.CleanupInterval.Duration, r.logger.With("component", "cleaner")); err != nil {
			return err
		}
	}

	r.logger.Info("session proxy ready",
		"addr", srv.Addr(),
		"store", config.Session.Store,
		"client_app", config.Server.ClientAppURL,
		"auth0", config.Auth0.Enabled(),
	)
	return srv.Run(ctx)
}

// buildServer wires the token client, proxy and session manager into a [server.Server].
func (r *Runner) buildServer(config *shared.Config, store *backend) (*server.Server, error) {
	client := r.httpClient
	if client == nil {
		client = &http.Client{Timeout: config.Spotify.Timeout.Duration}
	}

	tokens, err := services.NewTokenClient(clientConfig(config), r.endpoint, client)
	if err != nil {
		return nil, err
	}

	proxy := services.NewProxy(store.credentials, tokens, tokens, services.ProxyOptions{
		HTTPClient: client,
		Skew:       config.Proxy.ExpirySkew.Duration,
		RateLimit:  config.Proxy.RateLimit,
		Burst:      config.Proxy.Burst,
		Logger:     r.logger.With("component", "proxy"),
	})

	return server.New(server.Options{
		Config:   config,
		Sessions: session.NewManager(config.Session, store.sessions),
		Store:    store.credentials,
		Auth:     tokens,
		Proxy:    proxy,
		Logger:   r.logger.With("component", "http"),
	})
}

func clientConfig(config *shared.Config) models.ClientConfig {
	return models.ClientConfig{
		ClientID:     config.Spotify.ClientID,
		ClientSecret: config.Spotify.ClientSecret,
		RedirectURI:  config.Spotify.RedirectURI,
		Scopes:       config.Spotify.Scopes,
	}
}
