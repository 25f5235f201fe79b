// package server contains the router, middleware & handlers for the session proxy
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route is a single method and path pattern served by a [Handler].
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Handler groups related routes so they can be registered together.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a custom Handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options holds the collaborators of a [Server].
type Options struct {
	Config   *shared.Config
	Sessions *session.Manager
	Store    session.Store
	Auth     Authenticator
	Proxy    Proxy
	Logger   *log.Logger
}

// Server is the HTTP front of the proxy.
type Server struct {
	http    *http.Server
	handler http.Handler
	logger  *log.Logger
	timeout time.Duration
}

// New wires the auth, API and page handlers behind logging, recovery, CORS and session middleware.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Sessions == nil || opts.Store == nil || opts.Auth == nil || opts.Proxy == nil {
		return nil, fmt.Errorf("%w: server requires config, sessions, store, auth and proxy", shared.ErrInvalidConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	cfg := opts.Config

	origin, err := cfg.Server.ClientAppOrigin()
	if err != nil {
		return nil, err
	}

	errs := &errorWriter{
		logger:  logger,
		secrets: []string{cfg.Spotify.ClientSecret, cfg.Session.Secret},
	}

	router := NewBasicRouter()
	router.Use(opts.Sessions.LoadAndSave)

	router.Handler(NewAuthHandler(AuthOptions{
		Sessions:     opts.Sessions,
		Store:        opts.Store,
		Auth:         opts.Auth,
		ClientAppURL: cfg.Server.ClientAppURL,
		LogoutURL:    LogoutURL(cfg.Auth0, cfg.Server.ClientAppURL),
		Errors:       errs,
		Logger:       logger,
	}))
	router.Handler(NewAPIHandler(opts.Sessions, opts.Store, opts.Proxy, errs))

	pages, err := NewPageHandler(opts.Sessions, opts.Store, cfg.Server.ClientAppURL)
	if err != nil {
		return nil, err
	}
	router.Handler(pages)

	handler := Chain(router, Recoverer(logger), RequestLogger(logger), CORS(origin))

	return &Server{
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		handler: handler,
		logger:  logger,
		timeout: cfg.Server.ShutdownTimeout.Duration,
	}, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
