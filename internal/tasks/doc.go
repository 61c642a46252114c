// Package tasks ingests catalog albums and resolves their songs to playable videos,
// with real-time progress reporting.
//
// # Core Operations
//
//  1. [IngestEngine.IngestAlbum] : Catalog album → song store
//     - Fetches the album and its track listing from the music-data service
//     - Upserts the album and each song by external id (stored video ids survive)
//     - Resolves every song still lacking a video id
//
//  2. [IngestEngine.ResolveMissing] : Backfill
//     - Resolves every stored song with an empty video id
//
// # Concurrency
//
// Resolution runs on a bounded worker pool behind a [rate.Limiter]. Workers only call the
// resolver; database writes stay on the calling goroutine so a single sqlite connection is enough.
// A song that cannot be resolved is counted in [IngestResult] and skipped.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
