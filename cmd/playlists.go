package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tuneup/internal/formatter"
	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// PlaylistsList prints every playlist on the server.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.api.ListPlaylists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists\n")
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%-36s  %-30s  %d songs\n", p.ID, p.Name, len(p.SongIDs))
	}
	return nil
}

// PlaylistsCreate creates a playlist on the server.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	playlist, err := r.api.CreatePlaylist(ctx, services.CreatePlaylistRequest{
		Name:        name,
		Description: cmd.String("description"),
		SongIDs:     cmd.StringSlice("song"),
		Owner:       cmd.String("owner"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}
	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistsShow prints one playlist and its song ids.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	playlist, err := r.api.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}
	r.writePlainPlaylist(playlist)
	return nil
}

func (r *Runner) writePlainPlaylist(p *models.Playlist) {
	r.writePlainHeader(p.Name)
	if p.Description != "" {
		r.writePlain("%s\n", p.Description)
	}
	if p.Owner != "" {
		r.writePlain("Owner: %s\n", p.Owner)
	}
	r.writePlain("Songs: %d\n", len(p.SongIDs))
	for i, id := range p.SongIDs {
		r.writePlain("%3d. %s\n", i+1, id)
	}
}

// PlaylistsDelete deletes a playlist on the server.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.api.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistsAdd appends a song to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	songID, err := requireArg(cmd, "song-id")
	if err != nil {
		return err
	}

	playlist, err := r.api.AddPlaylistSong(ctx, id, songID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to %s (%d songs)\n", songID, playlist.Name, len(playlist.SongIDs))
}

// PlaylistsRemove removes a song from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	songID, err := requireArg(cmd, "song-id")
	if err != nil {
		return err
	}

	playlist, err := r.api.RemovePlaylistSong(ctx, id, songID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from %s (%d songs)\n", songID, playlist.Name, len(playlist.SongIDs))
}

// PlaylistsExport writes a playlist from the local database to disk.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewPlaylistRepository(db)
	playlist, err := repo.Get(id)
	if err != nil {
		return err
	}
	songs, err := repo.Songs(id)
	if err != nil {
		return err
	}

	export := &formatter.PlaylistExport{Playlist: *playlist, Songs: make([]models.Song, len(songs))}
	for i, s := range songs {
		export.Songs[i] = *s
	}

	exporter := formatter.NewExporter(r.httpClient, func(msg string, kv ...any) { r.logger.Warn(msg, kv...) })
	result, err := exporter.Write(export, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported playlist", "playlist", playlist.Name, "format", format, "songs", len(songs))
	for _, f := range result.Files {
		r.writePlain("✓ %s\n", f)
	}
	return nil
}

// GamesList prints games, optionally filtered by category.
func (r *Runner) GamesList(ctx context.Context, cmd *cli.Command) error {
	games, err := r.api.ListGames(ctx)
	if err != nil {
		return err
	}

	if category := cmd.String("category"); category != "" {
		filtered := games[:0]
		for _, g := range games {
			if strings.EqualFold(g.Category, category) {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(games, true)
	}

	if len(games) == 0 {
		return r.writePlain("No games\n")
	}

	r.writePlainHeader(fmt.Sprintf("Games (%d)", len(games)))
	for _, g := range games {
		r.writePlain("%-36s  %-30s  %s\n", g.ID, g.Name, g.Category)
	}
	return nil
}

// GamesAdd creates a game on the server.
func (r *Runner) GamesAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	game, err := r.api.CreateGame(ctx, services.CreateGameRequest{
		Name:         name,
		Category:     cmd.String("category"),
		ThumbnailURL: cmd.String("thumbnail"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(game, true)
	}
	return r.writePlain("✓ Added game %s (%s)\n", game.Name, game.ID)
}
