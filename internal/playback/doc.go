// Package playback implements the playback state container and the session registry around it.
//
// A [Player] holds the current track, play/pause flag, position, volume, shuffle and repeat modes,
// and an ordered queue built from the album or playlist that was last played. Every operation takes
// the player's mutex, so HTTP handlers and the terminal UI can drive the same player. Subscribers
// registered with [Player.Subscribe] receive a [models.PlaybackState] snapshot after each change.
//
// Queue invariant: when the index is >= 0 it points at an element physically present in the queue and
// that element is the current track. [Player.ClearQueue] sets the index to -1 while the current track
// keeps playing.
//
// [Sessions] keys players by session id and persists their snapshots to a [SessionStore]:
//   - [MemoryStore] : process-local map
//   - [RedisStore] : JSON snapshots in Redis with a sliding TTL
package playback
