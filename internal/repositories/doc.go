// Package repositories implements SQL persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [UserRepository] : Account persistence with email-based lookups
//   - [PlaylistRepository] : Playlists with owner-scoped lookups and deletes
//   - [SongRepository] : Songs attached to playlists
//
// Queries are written once with "?" placeholders; [shared.DB] rebinds them for Postgres.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
