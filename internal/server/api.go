package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/tunen/internal/services"
	"github.com/desertthunder/tunen/internal/session"
	"github.com/desertthunder/tunen/internal/shared"
)

// maxRequestBody caps JSON bodies accepted for write endpoints.
const maxRequestBody = 1 << 20

// Proxy forwards Web API calls. Implemented by [services.Proxy].
type Proxy interface {
	Call(ctx context.Context, sessionID string, ep services.Endpoint, pathArgs []string, query url.Values, body []byte) (json.RawMessage, error)
	CallCatalog(ctx context.Context, ep services.Endpoint, pathArgs []string, query url.Values) (json.RawMessage, error)
}

// APIHandler serves the /api routes.
type APIHandler struct {
	sessions *session.Manager
	store    session.Store
	proxy    Proxy
	errors   *errorWriter
}

// NewAPIHandler creates an [APIHandler].
func NewAPIHandler(sessions *session.Manager, store session.Store, proxy Proxy, errs *errorWriter) *APIHandler {
	return &APIHandler{sessions: sessions, store: store, proxy: proxy, errors: errs}
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []Route {
	profile := h.forward(services.Profile)

	return []Route{
		{Method: http.MethodGet, Path: "/api/session", Handler: h.Session},
		{Method: http.MethodGet, Path: "/api/profile", Handler: profile},
		{Method: http.MethodGet, Path: "/api/profile-data", Handler: profile},
		{Method: http.MethodGet, Path: "/api/user", Handler: profile},
		{Method: http.MethodGet, Path: "/api/playlists", Handler: h.forward(services.Playlists)},
		{Method: http.MethodPost, Path: "/api/playlists", Handler: h.forward(services.CreatePlaylist)},
		{Method: http.MethodGet, Path: "/api/recently-played", Handler: h.forward(services.RecentlyPlayed)},
		{Method: http.MethodGet, Path: "/api/search", Handler: h.forward(services.Search)},
		{Method: http.MethodGet, Path: "/api/tracks/{id}", Handler: h.forward(services.Track, "id")},
		{Method: http.MethodGet, Path: "/api/playlists/{id}/tracks", Handler: h.forward(services.PlaylistTracks, "id")},
		{Method: http.MethodPost, Path: "/api/playlists/{id}/tracks", Handler: h.forward(services.AddPlaylistTracks, "id")},
		{Method: http.MethodGet, Path: "/api/catalog/search", Handler: h.catalog(services.Search)},
		{Method: http.MethodGet, Path: "/api/catalog/tracks/{id}", Handler: h.catalog(services.Track, "id")},
	}
}

type sessionStatus struct {
	Authenticated   bool       `json:"authenticated"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	HasRefreshToken bool       `json:"has_refresh_token,omitempty"`
}

// Session reports whether the caller has a stored credential. It never contacts Spotify.
func (h *APIHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := h.sessions.ID(ctx)
	if id == "" {
		writeJSON(w, http.StatusOK, sessionStatus{})
		return
	}

	cred, found, err := h.store.Get(ctx, id)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, sessionStatus{})
		return
	}

	expiresAt := cred.ExpiresAt()
	writeJSON(w, http.StatusOK, sessionStatus{
		Authenticated:   true,
		ExpiresAt:       &expiresAt,
		HasRefreshToken: cred.RefreshToken != "",
	})
}

// forward proxies ep for the caller's session, filling path arguments from the named wildcards.
func (h *APIHandler) forward(ep services.Endpoint, wildcards ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload []byte
		if ep.AcceptsBody() {
			var err error
			if payload, err = readJSONBody(w, r); err != nil {
				h.errors.write(w, r, err)
				return
			}
		}

		body, err := h.proxy.Call(ctx, h.sessions.ID(ctx), ep, pathValues(r, wildcards), r.URL.Query(), payload)
		if err != nil {
			h.errors.write(w, r, err)
			return
		}
		writeRaw(w, body)
	}
}

// catalog proxies ep with the app-only token.
func (h *APIHandler) catalog(ep services.Endpoint, wildcards ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := h.proxy.CallCatalog(r.Context(), ep, pathValues(r, wildcards), r.URL.Query())
		if err != nil {
			h.errors.write(w, r, err)
			return
		}
		writeRaw(w, body)
	}
}

func pathValues(r *http.Request, names []string) []string {
	if len(names) == 0 {
		return nil
	}
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = r.PathValue(name)
	}
	return values
}

// readJSONBody returns the request body when it is declared as JSON. Any other content type yields nil,
// which the proxy reports as a missing body once the session has been checked.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return nil, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", shared.ErrInvalidArgument, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: failed to read request body: %v", shared.ErrInvalidArgument, err)
	}
	return body, nil
}
