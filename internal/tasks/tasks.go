package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
)

const (
	DefaultWorkers   = 4
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
)

// IngestOpts tunes concurrent resolution.
type IngestOpts struct {
	NumWorkers int     // Concurrent resolver calls (default: 4, max: 10)
	RateLimit  float64 // Resolver requests per second (default: 5)
}

// TrackFailure records a song whose resolution failed.
type TrackFailure struct {
	Song *models.Song
	Err  error
}

// IngestResult summarises an ingest or resolve run.
type IngestResult struct {
	Album    *models.Album  // Stored album with tracks; nil for ResolveMissing
	Songs    int            // Songs stored or examined
	Pending  int            // Songs that needed a video id
	Resolved int            // Songs that received a video id
	Missing  int            // No match, or resolution disabled
	Failed   int            // Transport or API failures
	Failures []TrackFailure // Details for Failed
}

// IngestEngine pulls albums from a [services.Catalog] into the song store and resolves
// songs to videos with a [services.TrackResolver].
type IngestEngine struct {
	catalog  services.Catalog
	resolver services.TrackResolver
	songs    *repositories.SongRepository
	albums   *repositories.AlbumRepository
	logger   *log.Logger
	opts     IngestOpts
}

type resolveJob struct {
	song *models.Song
}

type resolveResult struct {
	song *models.Song
	res  services.Resolution
}

// NewIngestEngine creates an engine. Zero options fall back to defaults; catalog may be nil when
// only [IngestEngine.ResolveMissing] is used.
func NewIngestEngine(
	catalog services.Catalog,
	resolver services.TrackResolver,
	songs *repositories.SongRepository,
	albums *repositories.AlbumRepository,
	logger *log.Logger,
	opts IngestOpts,
) *IngestEngine {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &IngestEngine{
		catalog:  catalog,
		resolver: resolver,
		songs:    songs,
		albums:   albums,
		logger:   logger.With("component", "ingest"),
		opts:     opts,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *IngestEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// IngestAlbum fetches albumID from the catalog, stores the album and its songs, and resolves
// every stored song that has no video id yet.
//
// Songs that cannot be resolved are counted and skipped; they do not fail the ingest.
func (e *IngestEngine) IngestAlbum(ctx context.Context, progress chan<- ProgressUpdate, albumID string) (*IngestResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	albumID = strings.TrimSpace(albumID)
	if albumID == "" {
		return nil, fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	start := time.Now()
	defer func() { ingestDuration.WithLabelValues("album").Observe(time.Since(start).Seconds()) }()

	e.sendProgress(progress, fetchAlbumUpdate(albumID, e.catalog.Name()))
	src, err := e.catalog.Album(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album %s: %w", albumID, err)
	}
	e.sendProgress(progress, foundAlbumUpdate(src))

	album := &models.Album{
		ExternalID:  src.ID,
		Title:       src.Title,
		Artist:      src.Artist,
		CoverURL:    src.CoverURL,
		ReleaseYear: src.ReleaseYear,
	}
	if err := e.albums.Upsert(album); err != nil {
		return nil, fmt.Errorf("failed to store album: %w", err)
	}

	result := &IngestResult{Songs: len(src.Tracks)}
	var pending []*models.Song
	for i, track := range src.Tracks {
		song := &models.Song{
			ExternalID:  track.ID,
			Title:       track.Title,
			Artist:      track.Artist,
			AlbumID:     album.ID,
			TrackNumber: track.TrackNumber,
			Duration:    track.Duration,
			CoverURL:    src.CoverURL,
		}
		if song.Artist == "" {
			song.Artist = src.Artist
		}
		if err := e.songs.Upsert(song); err != nil {
			return nil, fmt.Errorf("failed to store track %q: %w", track.Title, err)
		}
		e.sendProgress(progress, storeSongUpdate(i+1, len(src.Tracks), song))

		if !song.Playable() {
			pending = append(pending, song)
		}
	}

	e.logger.Info("stored album", "album", album.Title, "artist", album.Artist, "tracks", len(src.Tracks), "pending", len(pending))

	if err := e.resolveAll(ctx, progress, pending, result); err != nil {
		return result, err
	}

	stored, err := e.albums.GetWithTracks(album.ID)
	if err != nil {
		return result, fmt.Errorf("failed to reload album: %w", err)
	}
	result.Album = stored

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// ResolveMissing resolves every stored song that has no video id yet.
func (e *IngestEngine) ResolveMissing(ctx context.Context, progress chan<- ProgressUpdate) (*IngestResult, error) {
	start := time.Now()
	defer func() { ingestDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds()) }()

	pending, err := e.songs.List(map[string]any{"unresolved": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved songs: %w", err)
	}

	result := &IngestResult{Songs: len(pending)}
	if err := e.resolveAll(ctx, progress, pending, result); err != nil {
		return result, err
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// resolveAll runs pending through a rate-limited worker pool and stores found video ids.
//
// Workers only talk to the resolver; all database writes happen on the calling goroutine.
func (e *IngestEngine) resolveAll(ctx context.Context, progress chan<- ProgressUpdate, pending []*models.Song, result *IngestResult) error {
	result.Pending = len(pending)
	if len(pending) == 0 {
		return nil
	}

	if !e.resolverEnabled() {
		e.logger.Warn("track resolution disabled, leaving songs unresolved", "songs", len(pending))
		result.Missing += len(pending)
		ingestedTracks.WithLabelValues(services.StatusDisabled.String()).Add(float64(len(pending)))
		return nil
	}

	e.sendProgress(progress, resolveStartUpdate(len(pending)))

	limiter := rate.NewLimiter(rate.Limit(e.opts.RateLimit), 1)
	jobs := make(chan resolveJob, len(pending))
	results := make(chan resolveResult, len(pending))

	var wg sync.WaitGroup
	for range min(e.opts.NumWorkers, len(pending)) {
		wg.Add(1)
		go e.resolveWorker(ctx, &wg, jobs, results)
	}

	var waitErr error
	go func() {
		defer close(jobs)
		for _, song := range pending {
			if err := limiter.Wait(ctx); err != nil {
				waitErr = err
				return
			}
			jobs <- resolveJob{song: song}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for r := range results {
		completed++
		e.record(r, result)
		e.sendProgress(progress, resolvedTrackUpdate(completed, len(pending), r.song, r.res))
	}

	// waitErr is written before jobs closes, so it is visible once results drains.
	err := ctx.Err()
	if err == nil {
		err = waitErr
	}
	if err != nil {
		return fmt.Errorf("resolution interrupted after %d of %d tracks: %w", completed, len(pending), err)
	}
	return nil
}

// resolveWorker resolves songs from the jobs channel until it is closed or ctx is done.
func (e *IngestEngine) resolveWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan resolveJob, results chan<- resolveResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.resolver.Resolve(ctx, job.song.Title, job.song.Artist)
		results <- resolveResult{song: job.song, res: res}
	}
}

// record applies one resolution to the store and the counters.
func (e *IngestEngine) record(r resolveResult, result *IngestResult) {
	switch r.res.Status {
	case services.StatusFound:
		if err := e.songs.SetVideoID(r.song.ID, r.res.VideoID); err != nil {
			e.logger.Error("failed to store video id", "song", r.song.ID, "error", err)
			result.Failed++
			result.Failures = append(result.Failures, TrackFailure{Song: r.song, Err: err})
			ingestedTracks.WithLabelValues(services.StatusFailed.String()).Inc()
			return
		}
		r.song.VideoID = r.res.VideoID
		result.Resolved++
	case services.StatusFailed:
		err := r.res.Err
		if err == nil {
			err = errors.New("resolution failed")
		}
		result.Failed++
		result.Failures = append(result.Failures, TrackFailure{Song: r.song, Err: err})
	default:
		result.Missing++
	}
	ingestedTracks.WithLabelValues(r.res.Status.String()).Inc()
}

// resolverEnabled reports whether the resolver can make requests at all.
func (e *IngestEngine) resolverEnabled() bool {
	if e.resolver == nil {
		return false
	}
	if r, ok := e.resolver.(interface{ Enabled() bool }); ok {
		return r.Enabled()
	}
	return true
}
