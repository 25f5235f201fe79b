// Package repositories implements SQLite persistence for sessions and OAuth credentials.
//
// Key Implementations:
//   - [CredentialRepository] : session id → OAuth credential, implements session.Store
//   - [SessionRepository] : scs session data keyed by cookie token, implements scs.Store
//   - [Cleaner] : periodic removal of expired sessions and orphaned credentials
//
// Schemas live in internal/shared/sql and are applied by shared.RunMigrations.
package repositories
