package server

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/desertthunder/tunen/internal/session"
)

//go:embed templates/*.html
var templateFiles embed.FS

// PageHandler serves the landing page and health check.
type PageHandler struct {
	sessions     *session.Manager
	store        session.Store
	clientAppURL string
	index        *template.Template
}

type indexData struct {
	Authenticated bool
	ExpiresAt     time.Time
	LoginURL      string
	ClientAppURL  string
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(sessions *session.Manager, store session.Store, clientAppURL string) (*PageHandler, error) {
	index, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &PageHandler{sessions: sessions, store: store, clientAppURL: clientAppURL, index: index}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *PageHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/{$}", Handler: h.Index},
		{Method: http.MethodGet, Path: "/healthz", Handler: h.Health},
	}
}

// Index renders the landing page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{LoginURL: loginPath, ClientAppURL: h.clientAppURL}

	if id := h.sessions.ID(r.Context()); id != "" {
		if cred, found, err := h.store.Get(r.Context(), id); err == nil && found {
			data.Authenticated = true
			data.ExpiresAt = cred.ExpiresAt()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, data); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

// Health reports liveness.
func (h *PageHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
