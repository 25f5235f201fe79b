// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/tunen/internal/shared"
	"golang.org/x/oauth2"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// TokenServer is a fake Spotify accounts service answering client_credentials grants.
type TokenServer struct {
	*httptest.Server
	Token  string
	Status int

	requests atomic.Int32
}

// NewTokenServer starts a [TokenServer] that issues token with the given status; it is closed on cleanup.
func NewTokenServer(t *testing.T, token string, status int) *TokenServer {
	t.Helper()
	ts := &TokenServer{Token: token, Status: status}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")

		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unsupported_grant_type"}`))
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if ts.Status >= 400 {
			w.WriteHeader(ts.Status)
			w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": ts.Token,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Endpoint returns an [oauth2.Endpoint] pointing at the server.
func (ts *TokenServer) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   ts.URL + "/authorize",
		TokenURL:  ts.URL + "/api/token",
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// Requests returns the number of requests served.
func (ts *TokenServer) Requests() int {
	return int(ts.requests.Load())
}

// NewConfig returns the default configuration with test credentials and a SQLite database inside a temp dir.
func NewConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Spotify.ClientID = "test-client"
	config.Spotify.ClientSecret = "test-secret"
	config.Spotify.RedirectURI = "http://127.0.0.1:8888/callback/spotify"
	config.Session.Secret = "0123456789abcdef0123456789abcdef"
	config.Session.Store = "sqlite"
	config.Database.Path = filepath.Join(t.TempDir(), "tunen.db")
	return config
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
