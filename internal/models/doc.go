// Package models defines domain entities and persistence interfaces for the setlist playlist service.
//
// Persistent entities:
//   - [User] : Accounts identified by email, holding a bcrypt password hash
//   - [Playlist] : Playlists owned by a single user
//   - [Song] : Songs attached to a single playlist
//
// Ownership is transitive: a song belongs to the user who owns its playlist.
//
// All persistent entities implement the [Model] interface providing ID, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
//
// JSON encodings are explicit. A [User] never serializes its password hash.
package models
