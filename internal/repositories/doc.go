// Package repositories provides the persistence layer for the conversion
// pipeline.
//
// Each repository wraps a *sql.DB handle passed in by the caller; no
// package-level connection state exists, so tests can run against isolated
// in-memory databases. Each stage commits its own writes per statement and
// treats upstream tables as read-only input, leaving the store in a
// well-defined "last completed stage" state after a crash.
package repositories
