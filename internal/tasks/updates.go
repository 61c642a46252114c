package tasks

import (
	"fmt"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchAlbum Phase = iota
	StoreSongs
	ResolveTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case FetchAlbum:
		return "fetch_album"
	case StoreSongs:
		return "store_songs"
	case ResolveTracks:
		return "resolve_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func fetchAlbumUpdate(id, provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching album %s from %s...", id, provider),
	}
}

func foundAlbumUpdate(album *services.Album) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found album: %s by %s (%d tracks)", album.Title, album.Artist, len(album.Tracks)),
		Data:    album,
	}
}

func storeSongUpdate(step, total int, song *models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saved %s - %s", step, total, song.Artist, song.Title),
	}
}

func resolveStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d tracks on YouTube...", total),
	}
}

func resolvedTrackUpdate(step, total int, song *models.Song, res services.Resolution) ProgressUpdate {
	var mark string
	switch res.Status {
	case services.StatusFound:
		mark = "✓"
	case services.StatusFailed:
		mark = "✗"
	default:
		mark = "-"
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, song.Artist, song.Title),
		Data:    res,
	}
}

func completeUpdate(result *IngestResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d resolved, %d missing, %d failed", result.Resolved, result.Missing, result.Failed),
		Data:    result,
	}
}
