package repositories

import (
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// seedSongs creates count songs titled "Song 1".."Song N" and returns them in creation order
func seedSongs(t *testing.T, db *sql.DB, count int) []*models.Song {
	t.Helper()

	repo := NewSongRepository(db)
	songs := make([]*models.Song, 0, count)
	for i := range count {
		song := models.NewSong("Song "+string(rune('1'+i)), "Artist", 180+i)
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		songs = append(songs, song)
	}
	return songs
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "games")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}

func TestSongRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Test Song", "Test Artist", 215)
		song.CoverURL = "https://img.example.com/cover.jpg"

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if song.ID == "" {
			t.Error("song ID should be set after creation")
		}

		retrieved, err := repo.Get(song.ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.Title != "Test Song" {
			t.Errorf("expected title 'Test Song', got %s", retrieved.Title)
		}
		if retrieved.Duration != 215 {
			t.Errorf("expected duration 215, got %d", retrieved.Duration)
		}
		if retrieved.AlbumID != "" || retrieved.ExternalID != "" {
			t.Errorf("expected empty album and external ids, got %q %q", retrieved.AlbumID, retrieved.ExternalID)
		}
	})

	t.Run("SetVideoID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, db, 2)

		if err := repo.SetVideoID(songs[0].ID, "abc123"); err != nil {
			t.Fatalf("failed to set video id: %v", err)
		}

		retrieved, err := repo.Get(songs[0].ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.VideoID != "abc123" || !retrieved.Playable() {
			t.Errorf("expected video id abc123, got %q", retrieved.VideoID)
		}

		unresolved, err := repo.List(map[string]any{"unresolved": true})
		if err != nil {
			t.Fatalf("failed to list unresolved songs: %v", err)
		}
		if len(unresolved) != 1 || unresolved[0].ID != songs[1].ID {
			t.Errorf("expected only the second song to be unresolved, got %d songs", len(unresolved))
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Original", "Artist", 100)
		song.ExternalID = "ext-1"
		song.VideoID = "vid-1"

		if err := repo.Upsert(song); err != nil {
			t.Fatalf("failed to upsert new song: %v", err)
		}

		again := models.NewSong("Renamed", "Artist", 120)
		again.ExternalID = "ext-1"
		if err := repo.Upsert(again); err != nil {
			t.Fatalf("failed to upsert existing song: %v", err)
		}

		if again.ID != song.ID {
			t.Errorf("expected upsert to reuse id %s, got %s", song.ID, again.ID)
		}

		retrieved, err := repo.Get(song.ID)
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.Title != "Renamed" {
			t.Errorf("expected refreshed title, got %s", retrieved.Title)
		}
		if retrieved.VideoID != "vid-1" {
			t.Errorf("expected stored video id to be kept, got %q", retrieved.VideoID)
		}
	})

	t.Run("ListByIDs keeps order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, db, 3)

		got, err := repo.ListByIDs([]string{songs[2].ID, "missing", songs[0].ID})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("expected 2 songs, got %d", len(got))
		}
		if got[0].ID != songs[2].ID || got[1].ID != songs[0].ID {
			t.Error("songs should come back in requested order")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		songs := seedSongs(t, db, 1)

		if err := repo.Delete(songs[0].ID); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if _, err := repo.Get(songs[0].ID); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound for deleted song, got %v", err)
		}
	})
}

func TestAlbumRepository(t *testing.T) {
	t.Run("GetWithTracks orders by track number", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		albums := NewAlbumRepository(db)
		songs := NewSongRepository(db)

		album := models.NewAlbum("Album X", "Artist")
		album.ReleaseYear = 1999
		if err := albums.Create(album); err != nil {
			t.Fatalf("failed to create album: %v", err)
		}

		for _, n := range []int{3, 1, 2} {
			song := models.NewSong("Track "+string(rune('0'+n)), "Artist", 100)
			song.AlbumID = album.ID
			song.TrackNumber = n
			if err := songs.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		retrieved, err := albums.GetWithTracks(album.ID)
		if err != nil {
			t.Fatalf("failed to get album: %v", err)
		}

		if len(retrieved.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(retrieved.Tracks))
		}
		for i, track := range retrieved.Tracks {
			if track.TrackNumber != i+1 {
				t.Errorf("expected track %d at position %d, got %d", i+1, i, track.TrackNumber)
			}
		}
		if retrieved.Duration() != 300 {
			t.Errorf("expected total duration 300, got %d", retrieved.Duration())
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAlbumRepository(db)
		first := models.NewAlbum("Album", "Artist")
		first.ExternalID = "alb-1"
		if err := repo.Upsert(first); err != nil {
			t.Fatalf("failed to upsert album: %v", err)
		}

		second := models.NewAlbum("Album (Remastered)", "Artist")
		second.ExternalID = "alb-1"
		if err := repo.Upsert(second); err != nil {
			t.Fatalf("failed to upsert album again: %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list albums: %v", err)
		}
		if len(all) != 1 || all[0].Title != "Album (Remastered)" {
			t.Errorf("expected one refreshed album, got %d", len(all))
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewAlbumRepository(db).Get("nope"); !errors.Is(err, shared.ErrAlbumNotFound) {
			t.Errorf("expected ErrAlbumNotFound, got %v", err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create keeps song order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := seedSongs(t, db, 3)
		repo := NewPlaylistRepository(db)

		playlist := models.NewPlaylist("Road Trip", "long drives", "alice")
		playlist.SongIDs = []string{songs[2].ID, songs[0].ID, songs[1].ID}

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if !slices.Equal(retrieved.SongIDs, playlist.SongIDs) {
			t.Errorf("expected song order %v, got %v", playlist.SongIDs, retrieved.SongIDs)
		}
		if retrieved.Owner != "alice" {
			t.Errorf("expected owner alice, got %s", retrieved.Owner)
		}
	})

	t.Run("AddSong & RemoveSong", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := seedSongs(t, db, 3)
		repo := NewPlaylistRepository(db)

		playlist := models.NewPlaylist("Mix", "", "")
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		for _, s := range songs {
			if err := repo.AddSong(playlist.ID, s.ID); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		if err := repo.AddSong(playlist.ID, songs[0].ID); !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate when re-adding a song, got %v", err)
		}

		if err := repo.RemoveSong(playlist.ID, songs[1].ID); err != nil {
			t.Fatalf("failed to remove song: %v", err)
		}

		ordered, err := repo.Songs(playlist.ID)
		if err != nil {
			t.Fatalf("failed to load playlist songs: %v", err)
		}
		if len(ordered) != 2 || ordered[0].ID != songs[0].ID || ordered[1].ID != songs[2].ID {
			t.Errorf("unexpected playlist contents after removal: %d songs", len(ordered))
		}

		if err := repo.AddSong(playlist.ID, songs[1].ID); err != nil {
			t.Fatalf("failed to re-add song: %v", err)
		}
		retrieved, _ := repo.Get(playlist.ID)
		if last := retrieved.SongIDs[len(retrieved.SongIDs)-1]; last != songs[1].ID {
			t.Errorf("re-added song should be last, got %s", last)
		}
	})

	t.Run("Update replaces songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := seedSongs(t, db, 2)
		repo := NewPlaylistRepository(db)

		playlist := models.NewPlaylist("Before", "", "")
		playlist.SongIDs = []string{songs[0].ID}
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.Name = "After"
		playlist.SongIDs = []string{songs[1].ID, songs[0].ID}
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, err := repo.Get(playlist.ID)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name != "After" || !slices.Equal(retrieved.SongIDs, playlist.SongIDs) {
			t.Errorf("unexpected playlist after update: %s %v", retrieved.Name, retrieved.SongIDs)
		}
	})

	t.Run("List & Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := seedSongs(t, db, 1)
		repo := NewPlaylistRepository(db)

		for _, name := range []string{"One", "Two", "Three"} {
			p := models.NewPlaylist(name, "", "")
			p.SongIDs = []string{songs[0].ID}
			if err := repo.Create(p); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(all))
		}
		if all[0].Name != "One" || len(all[0].SongIDs) != 1 {
			t.Errorf("expected first playlist One with one song, got %s with %d", all[0].Name, len(all[0].SongIDs))
		}

		if err := repo.Delete(all[1].ID); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		remaining, _ := repo.List(nil)
		if len(remaining) != 2 {
			t.Errorf("expected 2 playlists after delete, got %d", len(remaining))
		}
	})
}

func TestGameRepository(t *testing.T) {
	t.Run("CRUD", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGameRepository(db)
		game := models.NewGame("Name That Tune", "quiz", "https://img.example.com/game.png")

		if err := repo.Create(game); err != nil {
			t.Fatalf("failed to create game: %v", err)
		}

		game.Category = "party"
		if err := repo.Update(game); err != nil {
			t.Fatalf("failed to update game: %v", err)
		}

		retrieved, err := repo.Get(game.ID)
		if err != nil {
			t.Fatalf("failed to get game: %v", err)
		}
		if retrieved.Category != "party" {
			t.Errorf("expected category party, got %s", retrieved.Category)
		}

		if err := repo.Delete(game.ID); err != nil {
			t.Fatalf("failed to delete game: %v", err)
		}
		if _, err := repo.Get(game.ID); !errors.Is(err, shared.ErrGameNotFound) {
			t.Errorf("expected ErrGameNotFound, got %v", err)
		}
	})

	t.Run("List by category", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewGameRepository(db)
		for _, g := range []*models.Game{
			models.NewGame("A", "quiz", ""),
			models.NewGame("B", "rhythm", ""),
			models.NewGame("C", "Quiz", ""),
		} {
			if err := repo.Create(g); err != nil {
				t.Fatalf("failed to create game: %v", err)
			}
		}

		quizzes, err := repo.List(map[string]any{"category": "quiz"})
		if err != nil {
			t.Fatalf("failed to list games: %v", err)
		}
		if len(quizzes) != 2 {
			t.Errorf("expected 2 quiz games, got %d", len(quizzes))
		}
	})
}
