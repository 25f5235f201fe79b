package services

import (
	"context"

	"github.com/desertthunder/tunen/internal/models"
)

// Refresher exchanges a refresh token for a new credential.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Credential, error)
}

// AppTokenSource provides an app-only access token with no user context.
type AppTokenSource interface {
	ClientCredentialsToken(ctx context.Context) (string, error)
}

// Authenticator is the part of [TokenClient] used by the login flow.
type Authenticator interface {
	AuthCodeURL(state, verifier string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*models.Credential, error)
}

var (
	_ Refresher      = (*TokenClient)(nil)
	_ AppTokenSource = (*TokenClient)(nil)
	_ Authenticator  = (*TokenClient)(nil)
)
