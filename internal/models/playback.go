package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tuneup/internal/shared"
)

// RepeatMode defines what happens when a track or the queue ends.
type RepeatMode int

const (
	RepeatOff    RepeatMode = iota // Stop after the last queued track
	RepeatAll                      // Wrap to the first queued track
	RepeatSingle                   // Replay the current track
)

// String returns the lowercase mode name used in JSON and the CLI.
func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatSingle:
		return "single"
	default:
		return "off"
	}
}

// Next cycles off -> all -> single -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatSingle
	default:
		return RepeatOff
	}
}

// ParseRepeatMode converts a mode name to a [RepeatMode].
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return RepeatOff, nil
	case "all", "queue":
		return RepeatAll, nil
	case "single", "one", "track":
		return RepeatSingle, nil
	default:
		return RepeatOff, fmt.Errorf("%w: repeat mode %q", shared.ErrInvalidArgument, s)
	}
}

func (m RepeatMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *RepeatMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRepeatMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ContextKind names what seeded a queue.
type ContextKind string

const (
	ContextAlbum    ContextKind = "album"
	ContextPlaylist ContextKind = "playlist"
	ContextSingle   ContextKind = "single"
)

// ParseContextKind validates a context kind; blank means [ContextSingle].
func ParseContextKind(s string) (ContextKind, error) {
	switch k := ContextKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ContextSingle, nil
	case ContextAlbum, ContextPlaylist, ContextSingle:
		return k, nil
	default:
		return "", fmt.Errorf("%w: context kind %q", shared.ErrInvalidArgument, s)
	}
}

// PlayContext is the album or playlist a queue was built from.
type PlayContext struct {
	Kind   ContextKind `json:"kind"`
	ID     string      `json:"id,omitempty"`
	Tracks []Song      `json:"-"`
}

// PlaybackState is a point-in-time copy of a player.
//
// Index is the position of CurrentTrack in Queue, or -1 when the track is not queued.
type PlaybackState struct {
	CurrentTrack *Song       `json:"currentTrack"`
	IsPlaying    bool        `json:"isPlaying"`
	CurrentTime  float64     `json:"currentTime"`
	Volume       float64     `json:"volume"`
	Shuffle      bool        `json:"shuffle"`
	Repeat       RepeatMode  `json:"repeat"`
	Queue        []Song      `json:"queue"`
	Index        int         `json:"index"`
	Context      PlayContext `json:"context"`
	History      []int       `json:"history,omitempty"`
	Played       []string    `json:"played,omitempty"`
}
