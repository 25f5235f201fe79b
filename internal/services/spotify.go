// Spotify token endpoint client
//
// See https://developer.spotify.com/documentation/web-api/tutorials/code-pkce-flow
package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/tunen/internal/models"
	"github.com/desertthunder/tunen/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/spotify"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"
	defaultTimeout = 10 * time.Second
)

// SpotifyEndpoint is the Spotify accounts service with client credentials sent in the Authorization header.
var SpotifyEndpoint = oauth2.Endpoint{
	AuthURL:   spotify.Endpoint.AuthURL,
	TokenURL:  spotify.Endpoint.TokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// TokenClient performs OAuth2 grants against the Spotify token endpoint.
type TokenClient struct {
	config     *oauth2.Config
	app        *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time

	mu       sync.Mutex
	appToken *oauth2.Token
}

// NewTokenClient creates a [TokenClient] for the registered application.
//
// A zero endpoint defaults to [SpotifyEndpoint] and a nil client to one with a 10s timeout.
func NewTokenClient(cfg models.ClientConfig, endpoint oauth2.Endpoint, client *http.Client) (*TokenClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMissingCredentials, err)
	}
	if endpoint.TokenURL == "" {
		endpoint = SpotifyEndpoint
	}
	endpoint.AuthStyle = oauth2.AuthStyleInHeader

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &TokenClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		app: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     endpoint.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: client,
		now:        time.Now,
	}, nil
}

// AuthCodeURL returns the authorize URL carrying state and the S256 challenge for verifier.
func (c *TokenClient) AuthCodeURL(state, verifier string) string {
	if verifier == "" {
		return c.config.AuthCodeURL(state)
	}
	return c.config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// ExchangeCode trades an authorization code for a credential.
func (c *TokenClient) ExchangeCode(ctx context.Context, code, verifier string) (*models.Credential, error) {
	if code == "" {
		return nil, shared.ErrMissingCode
	}

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	issuedAt := c.now()
	tok, err := c.config.Exchange(c.context(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrTokenExchange, tokenError(err))
	}
	return c.credential(tok, issuedAt), nil
}

// Refresh obtains a new access token.
//
// When Spotify omits refresh_token in the response, the returned credential keeps refreshToken.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (*models.Credential, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	issuedAt := c.now()
	tok, err := c.config.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, tokenError(err))
	}

	cred := c.credential(tok, issuedAt)
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

// ClientCredentialsToken returns an app-only access token, fetching a new one when the cached token expires.
func (c *TokenClient) ClientCredentialsToken(ctx context.Context) (string, error) {
	tok, err := c.AppToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// AppToken returns the cached app-only token with its expiry.
func (c *TokenClient) AppToken(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.appToken != nil && c.appToken.Valid() {
		return c.appToken, nil
	}

	tok, err := c.app.Token(c.context(ctx))
	if err != nil {
		return nil, tokenError(err)
	}
	c.appToken = tok
	return tok, nil
}

// context attaches the configured HTTP client for the oauth2 package to use.
func (c *TokenClient) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func (c *TokenClient) credential(tok *oauth2.Token, issuedAt time.Time) *models.Credential {
	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 && !tok.Expiry.IsZero() {
		expiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if expiresIn <= 0 {
		expiresIn = models.DefaultExpiresIn
	}

	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	scope, _ := tok.Extra("scope").(string)

	return &models.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tokenType,
		Scope:        scope,
		IssuedAt:     issuedAt,
		ExpiresIn:    expiresIn,
	}
}

// tokenError maps oauth2 failures: a non-2xx token response becomes [shared.UpstreamError] with that status,
// a transport failure a [shared.NetworkError], and a 2xx body the oauth2 package rejects an UpstreamError with 502.
func tokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := http.StatusBadGateway
		if rErr.Response != nil && rErr.Response.StatusCode >= 400 {
			status = rErr.Response.StatusCode
		}
		return &shared.UpstreamError{Status: status, Body: string(rErr.Body)}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &shared.NetworkError{Err: err}
	}

	return &shared.UpstreamError{Status: http.StatusBadGateway, Body: err.Error()}
}
