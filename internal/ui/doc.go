// Package ui implements the terminal player using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [BrowseView] : Albums and playlists from the library
//  2. [TrackListView] : Tracks of the selected album or playlist; enter plays one with the rest as the queue
//  3. [QueueView] : The player's queue, with removal
//
// A now-playing bar is always shown. The (view) [Model] owns no playback state: key presses are
// dispatched to a [playback.Player] and every render reads a fresh snapshot. A one-second tick
// drives [playback.Player.Advance], so tracks end and the queue moves on without audio output.
//
// Keyboard bindings: space play/pause, n/p next/previous, ←/→ seek, +/- volume, s shuffle,
// r repeat, tab queue, d remove, c clear, q quit. Contextual help is rendered via charmbracelet/bubbles/help.
package ui
