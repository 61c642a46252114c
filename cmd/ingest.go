package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
	"github.com/desertthunder/tuneup/internal/tasks"
)

// ResolveOutput is the JSON shape of the resolve command.
type ResolveOutput struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Query   string `json:"query"`
	Status  string `json:"status"`
	VideoID string `json:"videoId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IngestOutput is the JSON shape of the ingest command.
type IngestOutput struct {
	AlbumID  string   `json:"albumId,omitempty"`
	Title    string   `json:"title,omitempty"`
	Songs    int      `json:"songs"`
	Pending  int      `json:"pending"`
	Resolved int      `json:"resolved"`
	Missing  int      `json:"missing"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}

// Resolve looks up the video for one title and artist.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if title == "" {
		return fmt.Errorf("%w: title is required", shared.ErrMissingArgument)
	}

	res := r.trackResolver().Resolve(ctx, title, artist)
	if res.Status == services.StatusDisabled {
		return fmt.Errorf("%w: set %s to enable resolution", shared.ErrMissingCredentials, shared.EnvYouTubeAPIKey)
	}

	if cmd.Bool("json") {
		out := ResolveOutput{
			Title:   title,
			Artist:  artist,
			Query:   res.Query,
			Status:  res.Status.String(),
			VideoID: res.VideoID,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		return r.writeJSON(out, true)
	}

	switch res.Status {
	case services.StatusFound:
		return r.writePlain("✓ %s - %s\n  https://www.youtube.com/watch?v=%s\n", artist, title, res.VideoID)
	case services.StatusFailed:
		return r.writePlain("✗ %s - %s: lookup failed: %v\n", artist, title, res.Err)
	default:
		return r.writePlain("- %s - %s: no match for %q\n", artist, title, res.Query)
	}
}

// Ingest imports an album, or with --missing resolves stored songs that have no video.
func (r *Runner) Ingest(ctx context.Context, cmd *cli.Command) error {
	missing := cmd.Bool("missing")
	albumID := strings.TrimSpace(cmd.StringArg("album-id"))
	if !missing && albumID == "" {
		return fmt.Errorf("%w: album id is required unless --missing is set", shared.ErrMissingArgument)
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var catalog services.Catalog
	if !missing {
		if catalog, err = r.musicCatalog(ctx); err != nil {
			return err
		}
	}

	opts := tasks.IngestOpts{NumWorkers: r.config.Ingest.Workers, RateLimit: r.config.Ingest.RateLimit}
	if w := cmd.Int("workers"); w > 0 {
		opts.NumWorkers = w
	}
	if rate := cmd.Float("rate"); rate > 0 {
		opts.RateLimit = rate
	}

	engine := tasks.NewIngestEngine(
		catalog,
		r.trackResolver(),
		repositories.NewSongRepository(db),
		repositories.NewAlbumRepository(db),
		r.logger,
		opts,
	)

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 100)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			if !asJSON {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	var result *tasks.IngestResult
	if missing {
		result, err = engine.ResolveMissing(ctx, progress)
	} else {
		result, err = engine.IngestAlbum(ctx, progress, albumID)
	}
	close(progress)
	wg.Wait()

	if err != nil {
		if result != nil {
			r.writeIngestSummary(result, asJSON)
		}
		return err
	}
	return r.writeIngestSummary(result, asJSON)
}

func (r *Runner) writeIngestSummary(result *tasks.IngestResult, asJSON bool) error {
	out := IngestOutput{
		Songs:    result.Songs,
		Pending:  result.Pending,
		Resolved: result.Resolved,
		Missing:  result.Missing,
		Failed:   result.Failed,
	}
	if result.Album != nil {
		out.AlbumID = result.Album.ID
		out.Title = result.Album.Title
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, fmt.Sprintf("%s: %v", f.Song.Title, f.Err))
	}

	if asJSON {
		return r.writeJSON(out, true)
	}

	if out.Title != "" {
		r.writePlainln("%s (%s)", out.Title, out.AlbumID)
	} else {
		r.writePlainln("Resolution summary")
	}
	r.writePlain("  songs:    %d\n", out.Songs)
	r.writePlain("  resolved: %d of %d\n", out.Resolved, out.Pending)
	r.writePlain("  missing:  %d\n", out.Missing)
	r.writePlain("  failed:   %d\n", out.Failed)
	for _, f := range out.Failures {
		r.writePlain("    ✗ %s\n", f)
	}
	return nil
}
