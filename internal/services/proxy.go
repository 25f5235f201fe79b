package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
	"golang.org/x/time/rate"
)

// Endpoint describes one Web API call the proxy is allowed to make.
type Endpoint struct {
	Name     string
	Method   string
	Path     string   // relative to /v1, with a %s per path argument
	Required []string // query parameters that must be non-empty
	Optional []string // query parameters forwarded when present
	Fields   []string // keys a JSON object body must carry; nil means the endpoint takes no body
}

var (
	Profile = Endpoint{Name: "profile", Method: http.MethodGet, Path: "/me"}

	Playlists = Endpoint{
		Name: "playlists", Method: http.MethodGet, Path: "/me/playlists",
		Optional: []string{"limit", "offset"},
	}

	RecentlyPlayed = Endpoint{
		Name: "recently-played", Method: http.MethodGet, Path: "/me/player/recently-played",
		Optional: []string{"limit", "after", "before"},
	}

	Search = Endpoint{
		Name: "search", Method: http.MethodGet, Path: "/search",
		Required: []string{"q", "type"},
		Optional: []string{"limit", "offset", "market", "include_external"},
	}

	Track = Endpoint{
		Name: "track", Method: http.MethodGet, Path: "/tracks/%s",
		Optional: []string{"market"},
	}

	PlaylistTracks = Endpoint{
		Name: "playlist-tracks", Method: http.MethodGet, Path: "/playlists/%s/tracks",
		Optional: []string{"limit", "offset", "market", "fields"},
	}

	CreatePlaylist = Endpoint{
		Name: "create-playlist", Method: http.MethodPost, Path: "/me/playlists",
		Fields: []string{"name"},
	}

	AddPlaylistTracks = Endpoint{
		Name: "add-playlist-tracks", Method: http.MethodPost, Path: "/playlists/%s/tracks",
		Fields: []string{"uris"},
	}
)

// AcceptsBody reports whether ep forwards a JSON request body.
func (ep Endpoint) AcceptsBody() bool {
	return ep.Fields != nil
}

// Payload checks body against ep. Endpoints without a body get nil; the rest need a JSON object carrying every field.
func (ep Endpoint) Payload(body []byte) ([]byte, error) {
	if !ep.AcceptsBody() {
		return nil, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: %s requires a JSON body", shared.ErrMissingArgument, ep.Name)
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, fmt.Errorf("%w: %s body must be a JSON object", shared.ErrInvalidArgument, ep.Name)
	}
	for _, name := range ep.Fields {
		v, ok := object[name]
		if !ok || string(v) == "null" {
			return nil, fmt.Errorf("%w: body field %q is required", shared.ErrMissingArgument, name)
		}
	}

	return body, nil
}

// Target builds the request path and query for ep, forwarding only the parameters ep declares.
func (ep Endpoint) Target(pathArgs []string, query url.Values) (string, error) {
	if want := strings.Count(ep.Path, "%s"); len(pathArgs) != want {
		return "", fmt.Errorf("%w: %s expects %d path arguments, got %d", shared.ErrMissingArgument, ep.Name, want, len(pathArgs))
	}

	args := make([]any, len(pathArgs))
	for i, a := range pathArgs {
		if strings.TrimSpace(a) == "" {
			return "", fmt.Errorf("%w: empty path argument for %s", shared.ErrMissingArgument, ep.Name)
		}
		args[i] = url.PathEscape(a)
	}

	path := ep.Path
	if len(args) > 0 {
		path = fmt.Sprintf(ep.Path, args...)
	}

	forward := url.Values{}
	for _, name := range ep.Required {
		v := query.Get(name)
		if v == "" {
			return "", fmt.Errorf("%w: %q is required", shared.ErrMissingArgument, name)
		}
		forward.Set(name, v)
	}
	for _, name := range ep.Optional {
		if v := query.Get(name); v != "" {
			forward.Set(name, v)
		}
	}

	if len(forward) == 0 {
		return path, nil
	}
	return path + "?" + forward.Encode(), nil
}

// ProxyOptions configures a [Proxy].
type ProxyOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Skew       time.Duration // refresh this long before expiry
	RateLimit  float64       // upstream requests per second, <= 0 for unlimited
	Burst      int
	Logger     *log.Logger
}

// Proxy forwards Web API calls using the credential stored for a session.
type Proxy struct {
	store     session.Store
	refresher Refresher
	app       AppTokenSource
	api       *APIService
	locks     *session.Locks
	limiter   *rate.Limiter
	skew      time.Duration
	logger    *log.Logger
	now       func() time.Time
}

// NewProxy creates a [Proxy]. app may be nil, in which case catalog calls fail with [shared.ErrNotImplemented].
func NewProxy(store session.Store, refresher Refresher, app AppTokenSource, opts ProxyOptions) *Proxy {
	skew := opts.Skew
	if skew <= 0 {
		skew = session.DefaultSkew
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Proxy{
		store:     store,
		refresher: refresher,
		app:       app,
		api:       NewAPIService(opts.BaseURL, opts.HTTPClient),
		locks:     session.NewLocks(),
		limiter:   rate.NewLimiter(limit, burst),
		skew:      skew,
		logger:    logger,
		now:       time.Now,
	}
}

// Call performs ep for the session, refreshing its access token at most once.
//
// Without a stored credential it returns [shared.ErrNotAuthenticated] and makes no upstream request.
// body is forwarded only for endpoints that accept one.
func (p *Proxy) Call(ctx context.Context, sessionID string, ep Endpoint, pathArgs []string, query url.Values, body []byte) (json.RawMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: no session", shared.ErrNotAuthenticated)
	}

	_, found, err := p.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: no credential for session", shared.ErrNotAuthenticated)
	}

	target, err := ep.Target(pathArgs, query)
	if err != nil {
		return nil, err
	}
	payload, err := ep.Payload(body)
	if err != nil {
		return nil, err
	}

	token, err := p.AccessToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return p.do(ctx, ep, target, token, payload)
}

// CallCatalog performs ep with the app-only token. It never reads or writes session credentials.
func (p *Proxy) CallCatalog(ctx context.Context, ep Endpoint, pathArgs []string, query url.Values) (json.RawMessage, error) {
	if p.app == nil {
		return nil, fmt.Errorf("%w: catalog access", shared.ErrNotImplemented)
	}

	target, err := ep.Target(pathArgs, query)
	if err != nil {
		return nil, err
	}

	if ep.AcceptsBody() {
		return nil, fmt.Errorf("%w: %s needs a user session", shared.ErrInvalidArgument, ep.Name)
	}

	token, err := p.app.ClientCredentialsToken(ctx)
	if err != nil {
		return nil, err
	}

	return p.do(ctx, ep, target, token, nil)
}

// AccessToken returns a usable access token for the session, refreshing and persisting it when expired.
//
// Refresh for one session id is serialized so concurrent requests trigger a single token request.
func (p *Proxy) AccessToken(ctx context.Context, sessionID string) (string, error) {
	unlock := p.locks.Lock(sessionID)
	defer unlock()

	cred, found, err := p.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	if !found {
		return "", fmt.Errorf("%w: no credential for session", shared.ErrNotAuthenticated)
	}

	if !cred.Expired(p.now(), p.skew) {
		return cred.AccessToken, nil
	}

	if cred.RefreshToken == "" {
		return "", fmt.Errorf("%w: access token expired", shared.ErrNotAuthenticated)
	}

	fresh, err := p.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		p.logger.Warn("token refresh failed", "session", shortID(sessionID), "error", err)
		return "", fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cred.RefreshToken
	}

	if err := p.store.Put(ctx, sessionID, fresh); err != nil {
		return "", fmt.Errorf("failed to store refreshed credential: %w", err)
	}

	p.logger.Debug("refreshed access token", "session", shortID(sessionID), "expires_at", fresh.ExpiresAt())
	return fresh.AccessToken, nil
}

func (p *Proxy) do(ctx context.Context, ep Endpoint, target, token string, body []byte) (json.RawMessage, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &shared.NetworkError{Err: err}
	}

	start := time.Now()
	resp, err := p.api.Do(ctx, ep.Method, target, token, body)
	if err != nil {
		return nil, &shared.NetworkError{Err: err}
	}

	p.logger.Debug("spotify request", "endpoint", ep.Name, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.UpstreamError{Status: resp.StatusCode, Body: string(resp.Body)}
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	if !resp.IsJSON {
		return nil, &shared.UpstreamError{Status: http.StatusBadGateway, Body: string(resp.Body)}
	}

	return json.RawMessage(resp.Body), nil
}

// shortID keeps log lines correlatable without printing the full session id.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
