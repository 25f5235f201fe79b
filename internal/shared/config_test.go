package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tunen.db" {
			t.Errorf("expected database path ./tunen.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Spotify.Timeout.Duration != 10*time.Second {
			t.Errorf("expected spotify timeout 10s, got %v", config.Spotify.Timeout)
		}

		if config.Proxy.ExpirySkew.Duration != time.Minute {
			t.Errorf("expected expiry skew 60s, got %v", config.Proxy.ExpirySkew)
		}

		if !config.Session.Secure {
			t.Error("expected secure cookies by default")
		}

		if len(config.Spotify.Scopes) == 0 {
			t.Error("expected default scopes")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080
client_app_url = "https://app.example.com/home"

[spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "https://api.example.com/callback/spotify"
timeout = "3s"

[session]
store = "memory"
secure = false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Spotify.ClientID)
		}

		if config.Spotify.Timeout.Duration != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", config.Spotify.Timeout)
		}

		if config.Session.Secure {
			t.Error("expected secure=false from file")
		}

		if config.Session.CookieName != "tunen_session" {
			t.Errorf("expected unspecified keys to keep defaults, got cookie name %q", config.Session.CookieName)
		}

		origin, err := config.Server.ClientAppOrigin()
		if err != nil {
			t.Fatalf("unexpected origin error: %v", err)
		}
		if origin != "https://app.example.com" {
			t.Errorf("expected origin https://app.example.com, got %s", origin)
		}
	})

	t.Run("LoadConfig Invalid Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[spotify]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"SPOTIFY_CLIENT_ID":     "env_id",
			"SPOTIFY_CLIENT_SECRET": "env_secret",
			"SPOTIFY_REDIRECT_URI":  "https://env.example.com/callback/spotify",
			"SPOTIFY_SCOPES":        "user-read-private,user-read-email",
			"SESSION_COOKIE_SECURE": "false",
			"AUTH0_DOMAIN":          "tenant.auth0.com",
			"PORT":                  "9000",
		}

		config := DefaultConfig()
		if err := config.ApplyEnv(func(k string) string { return env[k] }); err != nil {
			t.Fatalf("ApplyEnv() error = %v", err)
		}

		if config.Spotify.ClientID != "env_id" || config.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected credentials from env, got %q/%q", config.Spotify.ClientID, config.Spotify.ClientSecret)
		}
		if config.Spotify.RedirectURI != env["SPOTIFY_REDIRECT_URI"] {
			t.Errorf("expected redirect uri from env, got %s", config.Spotify.RedirectURI)
		}
		if len(config.Spotify.Scopes) != 2 || config.Spotify.Scopes[1] != "user-read-email" {
			t.Errorf("expected scopes from env, got %v", config.Spotify.Scopes)
		}
		if config.Session.Secure {
			t.Error("expected SESSION_COOKIE_SECURE=false to disable secure cookies")
		}
		if config.Auth0.Domain != "tenant.auth0.com" {
			t.Errorf("expected auth0 domain from env, got %s", config.Auth0.Domain)
		}
		if config.Server.Port != 9000 {
			t.Errorf("expected port 9000, got %d", config.Server.Port)
		}
	})

	t.Run("ApplyEnv Invalid Values", func(t *testing.T) {
		for _, env := range []map[string]string{
			{"SESSION_COOKIE_SECURE": "maybe"},
			{"PORT": "eighty"},
		} {
			config := DefaultConfig()
			err := config.ApplyEnv(func(k string) string { return env[k] })
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ApplyEnv(%v) error = %v, want ErrInvalidConfig", env, err)
			}
		}
	})

	t.Run("Validate", func(t *testing.T) {
		valid := func() *Config {
			c := DefaultConfig()
			c.Spotify.ClientID = "id"
			c.Spotify.ClientSecret = "secret"
			return c
		}

		if err := valid().Validate(); err != nil {
			t.Fatalf("expected default config with credentials to validate, got %v", err)
		}

		tt := []struct {
			name   string
			mutate func(*Config)
			want   error
		}{
			{"missing client id", func(c *Config) { c.Spotify.ClientID = "" }, ErrMissingCredentials},
			{"missing redirect", func(c *Config) { c.Spotify.RedirectURI = "" }, ErrInvalidConfig},
			{"relative client app url", func(c *Config) { c.Server.ClientAppURL = "/app" }, ErrInvalidConfig},
			{"short secret", func(c *Config) { c.Session.Secret = "short" }, ErrInvalidConfig},
			{"unknown store", func(c *Config) { c.Session.Store = "redis" }, ErrInvalidConfig},
			{"unknown same site", func(c *Config) { c.Session.SameSite = "sometimes" }, ErrInvalidConfig},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				c := valid()
				tc.mutate(c)
				if err := c.Validate(); !errors.Is(err, tc.want) {
					t.Errorf("Validate() error = %v, want %v", err, tc.want)
				}
			})
		}
	})
}
