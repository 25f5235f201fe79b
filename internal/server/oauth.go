package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunen/internal/models"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
)

// Authenticator builds authorize URLs and exchanges codes. Implemented by services.TokenClient.
type Authenticator interface {
	AuthCodeURL(state, verifier string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*models.Credential, error)
}

// AuthOptions configures an [AuthHandler].
type AuthOptions struct {
	Sessions     *session.Manager
	Store        session.Store
	Auth         Authenticator
	ClientAppURL string
	LogoutURL    string
	Errors       *errorWriter
	Logger       *log.Logger
}

// AuthHandler drives the authorization-code flow: login redirect, callback and logout.
type AuthHandler struct {
	sessions     *session.Manager
	store        session.Store
	auth         Authenticator
	clientAppURL string
	logoutURL    string
	errors       *errorWriter
	logger       *log.Logger
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(opts AuthOptions) *AuthHandler {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	errs := opts.Errors
	if errs == nil {
		errs = &errorWriter{logger: logger}
	}
	logoutURL := opts.LogoutURL
	if logoutURL == "" {
		logoutURL = opts.ClientAppURL
	}

	return &AuthHandler{
		sessions:     opts.Sessions,
		store:        opts.Store,
		auth:         opts.Auth,
		clientAppURL: opts.ClientAppURL,
		logoutURL:    logoutURL,
		errors:       errs,
		logger:       logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: loginPath, Handler: h.Login},
		{Method: http.MethodGet, Path: "/callback/spotify", Handler: h.Callback},
		{Method: http.MethodGet, Path: "/callback/", Handler: h.Callback},
		{Method: http.MethodGet, Path: "/logout", Handler: h.Logout},
	}
}

// Login stores a fresh state nonce and PKCE verifier in the session and redirects to Spotify.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	login, err := h.sessions.BeginLogin(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	http.Redirect(w, r, h.auth.AuthCodeURL(login.State, login.Verifier), http.StatusFound)
}

// Callback validates state, exchanges the code and stores the credential for the session.
//
// The state nonce is consumed on every attempt, so a callback URL cannot be replayed.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	verifier, err := h.sessions.CompleteLogin(ctx, q.Get("state"))
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		h.errors.write(w, r, fmt.Errorf("%w: authorization failed: %s", shared.ErrMissingCode, strings.TrimSpace(errParam+" "+desc)))
		return
	}

	code := q.Get("code")
	if code == "" {
		h.errors.write(w, r, shared.ErrMissingCode)
		return
	}

	cred, err := h.auth.ExchangeCode(ctx, code, verifier)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	id := h.sessions.EnsureID(ctx)
	if err := h.store.Put(ctx, id, cred); err != nil {
		h.errors.write(w, r, fmt.Errorf("failed to store credential: %w", err))
		return
	}
	if err := h.sessions.Renew(ctx); err != nil {
		h.errors.write(w, r, fmt.Errorf("failed to renew session: %w", err))
		return
	}

	h.logger.Info("spotify login complete", "expires_at", cred.ExpiresAt(), "refresh_token", cred.RefreshToken != "")
	http.Redirect(w, r, h.clientAppURL, http.StatusFound)
}

// Logout clears the stored credential, destroys the session and redirects to the logout URL.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if id := h.sessions.ID(ctx); id != "" {
		if err := h.store.Clear(ctx, id); err != nil {
			h.errors.write(w, r, fmt.Errorf("failed to clear credential: %w", err))
			return
		}
	}
	if err := h.sessions.Destroy(ctx); err != nil {
		h.errors.write(w, r, fmt.Errorf("failed to destroy session: %w", err))
		return
	}

	http.Redirect(w, r, h.logoutURL, http.StatusFound)
}

// LogoutURL returns the Auth0 logout endpoint when Auth0 is configured, otherwise clientAppURL.
func LogoutURL(cfg shared.Auth0Config, clientAppURL string) string {
	if !cfg.Enabled() {
		return clientAppURL
	}

	returnTo := cfg.LogoutReturnTo
	if returnTo == "" {
		returnTo = clientAppURL
	}

	domain := strings.TrimSuffix(strings.TrimPrefix(cfg.Domain, "https://"), "/")
	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("returnTo", returnTo)

	return "https://" + domain + "/v2/logout?" + params.Encode()
}
