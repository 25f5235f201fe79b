// Package services talks to Spotify on behalf of a session.
//
// # Token Exchange
//
// [TokenClient] performs the three token-endpoint grants used by the proxy:
//   - authorization_code, with a PKCE verifier, after the login callback
//   - refresh_token, when a stored access token is about to expire
//   - client_credentials, for catalog lookups that carry no user context
//
// Client credentials are always sent as a Basic-auth header. The app-only token is cached
// by the client and never stored in a session.
//
// # API Proxy
//
// [Proxy] forwards a fixed set of [Endpoint] calls to the Web API. Each call looks up the
// session credential, refreshes it at most once when expired, and returns the upstream JSON
// body unchanged. Upstream calls share one token-bucket limiter.
//
// # Error Handling
//
// Errors are typed with the shared package:
//   - [shared.ErrNotAuthenticated] : no credential, or refresh was impossible or failed
//   - [shared.ErrMissingArgument] : required query or path argument absent
//   - [shared.UpstreamError] : Spotify answered with a non-2xx status
//   - [shared.NetworkError] : transport failure, timeout or cancelled wait
package services
