package models

import (
	"errors"
	"time"
)

// DefaultExpiresIn is used when the token endpoint omits expires_in; Spotify issues one-hour tokens.
const DefaultExpiresIn int64 = 3600

// Credential is the OAuth token pair bound to one session.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
}

// ExpiresAt returns IssuedAt + ExpiresIn.
func (c Credential) ExpiresAt() time.Time {
	return c.IssuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// Expired reports whether now is within skew of (or past) the expiry.
func (c Credential) Expired(now time.Time, skew time.Duration) bool {
	return !now.Before(c.ExpiresAt().Add(-skew))
}

// Validate checks that the credential can be stored.
func (c Credential) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access token is required")
	}
	if c.IssuedAt.IsZero() {
		return errors.New("issued at is required")
	}
	if c.ExpiresIn < 0 {
		return errors.New("expires in must not be negative")
	}
	return nil
}

// ClientConfig is the Spotify application registration, loaded once at startup.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Validate checks that all required fields are present.
func (c ClientConfig) Validate() error {
	if c.ClientID == "" {
		return errors.New("missing client_id")
	}
	if c.ClientSecret == "" {
		return errors.New("missing client_secret")
	}
	if c.RedirectURI == "" {
		return errors.New("missing redirect_uri")
	}
	return nil
}

// SessionSummary describes a stored credential without exposing tokens.
type SessionSummary struct {
	SessionID       string
	ExpiresAt       time.Time
	HasRefreshToken bool
	UpdatedAt       time.Time
}
