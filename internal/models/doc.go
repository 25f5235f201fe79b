// Package models defines the data types shared by the token client, the session store and the HTTP layer.
//
//   - [Credential] : an OAuth access/refresh token pair with its issue time and lifetime
//   - [ClientConfig] : the immutable Spotify application registration
//   - [SessionSummary] : a token-free view of a stored credential for operators
//
// A [Credential] is owned by a session store and only ever replaced wholesale with
// the result of a token exchange or refresh.
package models
