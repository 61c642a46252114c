// Package models defines domain entities and persistence interfaces for tuneup.
//
// The package contains two categories of types:
//
// 1. Catalog and library records, persisted by the repositories package:
//   - [Song] : a playable track with an optional external video identifier
//   - [Album] : an album whose tracks are songs ordered by track number
//   - [Playlist] : a user playlist with an ordered list of song identifiers
//   - [Game] : a catalog record with a name, category and thumbnail
//
// 2. Playback values owned by the playback package:
//   - [RepeatMode] : off, all or single
//   - [PlayContext] : the album or playlist that seeds a queue
//   - [PlaybackState] : a serializable snapshot of a player
//
// All persistent entities implement the Model interface providing an identifier and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
