// Package database provides SQLite persistence for vncman.
//
// It wraps database/sql with:
//   - Connection setup (WAL mode, busy timeout, foreign keys)
//   - Embedded SQL migrations with per-migration transactions
//   - Health checks for monitoring
//
// SQLite is deliberate: a machine registry is a small, read-heavy dataset
// served by a single process, and a file-backed database keeps deployment
// to a single binary plus one file.
//
// Thread Safety: the connection pool is capped at one connection because
// SQLite supports a single writer; callers may still use the DB from any
// goroutine.
package database
