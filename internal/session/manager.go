package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/desertthunder/tunen/internal/shared"
	"golang.org/x/oauth2"
)

const (
	keySessionID = "sid"
	keyState     = "oauth_state"
	keyVerifier  = "pkce_verifier"
)

// Manager wraps [scs.SessionManager] with the session id and login-flow helpers used by the auth handlers.
type Manager struct {
	scs    *scs.SessionManager
	secret []byte
}

// NewManager creates a [Manager] persisting session data in store.
func NewManager(cfg shared.SessionConfig, store scs.Store) *Manager {
	sm := scs.New()
	sm.Store = store
	if cfg.Lifetime.Duration > 0 {
		sm.Lifetime = cfg.Lifetime.Duration
	}
	if cfg.CookieName != "" {
		sm.Cookie.Name = cfg.CookieName
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = true
	sm.Cookie.Secure = cfg.Secure
	sm.Cookie.SameSite = ParseSameSite(cfg.SameSite)

	return &Manager{scs: sm, secret: []byte(cfg.Secret)}
}

// ParseSameSite maps a config value to [http.SameSite], defaulting to Lax.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// LoadAndSave is the middleware that loads and commits the session for each request.
func (m *Manager) LoadAndSave(next http.Handler) http.Handler {
	return m.scs.LoadAndSave(next)
}

// Lifetime returns the absolute session lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.scs.Lifetime
}

// ID returns the session id of the current request, or "" if none was issued.
func (m *Manager) ID(ctx context.Context) string {
	return m.scs.GetString(ctx, keySessionID)
}

// EnsureID returns the current session id, issuing a new one if needed.
func (m *Manager) EnsureID(ctx context.Context) string {
	if id := m.ID(ctx); id != "" {
		return id
	}
	id := shared.GenerateID()
	m.scs.Put(ctx, keySessionID, id)
	return id
}

// Login holds the values a new authorization request needs.
type Login struct {
	State    string
	Verifier string
}

// BeginLogin issues a state nonce bound to the session id and a PKCE verifier, storing both in the session.
func (m *Manager) BeginLogin(ctx context.Context) (Login, error) {
	id := m.EnsureID(ctx)

	state, err := NewStateToken(id, m.secret)
	if err != nil {
		return Login{}, fmt.Errorf("failed to generate state token: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	m.scs.Put(ctx, keyState, state)
	m.scs.Put(ctx, keyVerifier, verifier)

	return Login{State: state, Verifier: verifier}, nil
}

// CompleteLogin consumes the pending login and checks the state returned by the provider.
//
// The nonce is single-use: it is removed whether or not validation succeeds.
func (m *Manager) CompleteLogin(ctx context.Context, state string) (verifier string, err error) {
	want := m.scs.PopString(ctx, keyState)
	verifier = m.scs.PopString(ctx, keyVerifier)

	if want == "" {
		return "", fmt.Errorf("%w: no login in progress", shared.ErrInvalidState)
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(state)) != 1 {
		return "", fmt.Errorf("%w: state mismatch", shared.ErrInvalidState)
	}
	if !ValidateStateToken(state, m.ID(ctx), m.secret) {
		return "", fmt.Errorf("%w: state not bound to this session", shared.ErrInvalidState)
	}

	return verifier, nil
}

// Renew rotates the session cookie token while keeping its data.
func (m *Manager) Renew(ctx context.Context) error {
	return m.scs.RenewToken(ctx)
}

// Destroy deletes the session data and expires the cookie.
func (m *Manager) Destroy(ctx context.Context) error {
	return m.scs.Destroy(ctx)
}
