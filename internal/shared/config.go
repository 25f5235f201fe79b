package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Session  SessionConfig  `toml:"session"`
	Proxy    ProxyConfig    `toml:"proxy"`
	Auth0    Auth0Config    `toml:"auth0"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ClientAppURL    string   `toml:"client_app_url"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ClientAppOrigin returns the scheme://host[:port] of the client application, the only origin allowed to make
// credentialed cross-origin requests.
func (s ServerConfig) ClientAppOrigin() (string, error) {
	u, err := url.Parse(s.ClientAppURL)
	if err != nil {
		return "", fmt.Errorf("%w: client_app_url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: client_app_url must be absolute, got %q", ErrInvalidConfig, s.ClientAppURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
	Timeout      Duration `toml:"timeout"`
}

// SessionConfig contains session cookie and credential store settings.
type SessionConfig struct {
	Store           string   `toml:"store"` // memory or sqlite
	Secret          string   `toml:"secret"`
	CookieName      string   `toml:"cookie_name"`
	Secure          bool     `toml:"secure"`
	SameSite        string   `toml:"same_site"`
	Lifetime        Duration `toml:"lifetime"`
	CleanupInterval Duration `toml:"cleanup_interval"`
}

// ProxyConfig contains API proxy settings.
type ProxyConfig struct {
	ExpirySkew Duration `toml:"expiry_skew"`
	RateLimit  float64  `toml:"rate_limit"` // upstream requests per second, <= 0 disables limiting
	Burst      int      `toml:"burst"`
}

// Auth0Config holds the optional Auth0 tenant used for the logout redirect.
type Auth0Config struct {
	Domain         string `toml:"domain"`
	ClientID       string `toml:"client_id"`
	LogoutReturnTo string `toml:"logout_return_to"`
}

// Enabled reports whether an Auth0 tenant is configured.
func (a Auth0Config) Enabled() bool {
	return a.Domain != "" && a.ClientID != ""
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls logger level and output format.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text, json or logfmt
}

// Duration wraps [time.Duration] so it can be written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values from the process environment.
//
// getenv is usually [os.Getenv]; tests pass a map lookup.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	str("SPOTIFY_CLIENT_ID", &c.Spotify.ClientID)
	str("SPOTIFY_CLIENT_SECRET", &c.Spotify.ClientSecret)
	str("SPOTIFY_REDIRECT_URI", &c.Spotify.RedirectURI)
	str("CLIENT_APP_URL", &c.Server.ClientAppURL)
	str("SESSION_SECRET", &c.Session.Secret)
	str("AUTH0_DOMAIN", &c.Auth0.Domain)
	str("AUTH0_CLIENT_ID", &c.Auth0.ClientID)
	str("AUTH0_LOGOUT_RETURN_TO", &c.Auth0.LogoutReturnTo)
	str("DATABASE_PATH", &c.Database.Path)
	str("LOG_LEVEL", &c.Log.Level)

	if v := getenv("SPOTIFY_SCOPES"); v != "" {
		c.Spotify.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	if v := getenv("SESSION_COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: SESSION_COOKIE_SECURE=%q", ErrInvalidConfig, v)
		}
		c.Session.Secure = secure
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	return nil
}

// Validate checks that the configuration can run the server.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if c.Spotify.RedirectURI == "" {
		return fmt.Errorf("%w: spotify redirect_uri must be set", ErrInvalidConfig)
	}
	if _, err := c.Server.ClientAppOrigin(); err != nil {
		return err
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("%w: session secret must be at least 32 bytes", ErrInvalidConfig)
	}
	switch c.Session.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}
	switch strings.ToLower(c.Session.SameSite) {
	case "", "lax", "strict", "none":
	default:
		return fmt.Errorf("%w: unknown same_site %q", ErrInvalidConfig, c.Session.SameSite)
	}
	return nil
}
