// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SongRepository] : Song catalog with external-id upserts and video id resolution
//   - [AlbumRepository] : Albums, optionally joined with their songs in track order
//   - [PlaylistRepository] : Playlists with ordered, duplicate-free song membership
//   - [GameRepository] : Game catalog records
//
// Lookups that miss return the matching sentinel from the shared package (e.g. shared.ErrPlaylistNotFound),
// wrapped with the requested id, so callers can branch with errors.Is.
package repositories
