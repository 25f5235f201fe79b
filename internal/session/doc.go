// Package session binds OAuth credentials to browser sessions.
//
// Session identity is delegated to [scs.SessionManager]: the browser holds an
// opaque 256-bit cookie token and everything else stays server-side. Inside the
// scs session we keep a stable session id (a v4 UUID) that keys the credential
// [Store], plus the one-shot OAuth state nonce and PKCE verifier of a login in
// flight.
//
// Two [Store] implementations exist: [MemoryStore] here and the SQLite-backed
// repositories.CredentialRepository. Both are safe for concurrent use. Refreshes
// for a single session are serialized with [Locks]; distinct sessions never
// contend.
package session
