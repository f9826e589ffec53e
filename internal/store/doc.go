// Package store provides SQLite-backed storage for recorded resolutions.
//
// A resolution is one computed convention ordering: the manifest it came
// from, the requested host type and categories, and either the ordered
// entries or the error that stopped it.
//
// # Tables
//
//   - resolutions: one row per resolution, identified by a UUIDv7
//   - resolution_entries: the ordered entries of a successful resolution
//
// # Ordering
//
//   - Every resolution gets a seq INTEGER from a per-database counter
//   - List queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Manifest and ordering hashes are computed in internal/ir/hash.go using
// RFC 8785 canonical JSON and SHA-256 with domain separation.
package store
