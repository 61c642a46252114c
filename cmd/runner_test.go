package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/server"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
	tu "github.com/desertthunder/tuneup/internal/testing"
)

type fakeResolver struct {
	results map[string]services.Resolution
}

func (f *fakeResolver) Resolve(_ context.Context, title, artist string) services.Resolution {
	if res, ok := f.results[title]; ok {
		res.Query = services.BuildQuery(title, artist)
		return res
	}
	return services.Resolution{Status: services.StatusNotFound, Query: services.BuildQuery(title, artist)}
}

type fakeCatalog struct {
	albums map[string]*services.Album
}

func (f *fakeCatalog) Name() string { return "Fake" }

func (f *fakeCatalog) Album(_ context.Context, id string) (*services.Album, error) {
	if a, ok := f.albums[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "tuneup", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"tuneup"}, args...))
}

func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	logger, _ := tu.NewTestLogger()
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
		opts.Config.Database.Path = filepath.Join(t.TempDir(), "tuneup.db")
	}
	opts.Output = output
	opts.Logger = logger
	return NewRunner(opts), output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIClient("http://example.test", httpClient)
			resolver := &fakeResolver{}
			catalog := &fakeCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
				Resolver:   resolver,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.trackResolver() != resolver {
				t.Error("expected resolver to be set")
			}
			if got, err := runner.musicCatalog(context.Background()); err != nil || got != catalog {
				t.Errorf("expected catalog to be set, got %v, %v", got, err)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.api == nil || runner.api.BaseURL() != runner.config.Server.APIURL {
				t.Error("expected api client for the configured server")
			}
		})

		t.Run("catalog without credentials", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: &shared.Config{}})
			if _, err := runner.musicCatalog(context.Background()); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "serve", "resolve", "ingest", "playlists", "games", "player"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "setup.db")
		t.Setenv(shared.EnvDatabasePath, dbPath)

		runner, _ := newTestRunner(t, RunnerOpts{})
		if err := run(t, runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, configPath)
		tu.AssertFileExists(t, dbPath)

		db, err := shared.NewDatabase(dbPath)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil || count == 0 {
			t.Errorf("expected applied migrations, got %d (%v)", count, err)
		}
	})

	t.Run("config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		runner, output := newTestRunner(t, RunnerOpts{})

		if err := run(t, runner, "setup", "config", "-c", configPath); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		if !strings.Contains(output.String(), configPath) {
			t.Errorf("expected path in output, got %q", output.String())
		}
		if err := run(t, runner, "setup", "config", "-c", configPath); err == nil {
			t.Error("expected error when config already exists")
		}
	})
}

func TestResolveCommand(t *testing.T) {
	resolver := &fakeResolver{results: map[string]services.Resolution{
		"Around the World": {Status: services.StatusFound, VideoID: "vid-atw"},
		"Broken":           {Status: services.StatusFailed, Err: errors.New("status 500")},
	}}

	t.Run("found", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: resolver})
		if err := run(t, runner, "resolve", "Around the World", "Daft Punk"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if !strings.Contains(output.String(), "https://www.youtube.com/watch?v=vid-atw") {
			t.Errorf("expected watch URL, got %q", output.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: resolver})
		if err := run(t, runner, "resolve", "Unknown", "Nobody"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if !strings.Contains(output.String(), "no match for \"Unknown Nobody official audio\"") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("failed as json", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: resolver})
		if err := run(t, runner, "resolve", "--json", "Broken", "Band"); err != nil {
			t.Fatalf("resolve failed: %v", err)
		}

		var out ResolveOutput
		if err := json.Unmarshal(output.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if out.Status != "failed" || out.Error != "status 500" || out.VideoID != "" {
			t.Errorf("unexpected output %+v", out)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		disabled := &fakeResolver{results: map[string]services.Resolution{"Song": {Status: services.StatusDisabled}}}
		runner, _ := newTestRunner(t, RunnerOpts{Resolver: disabled})
		if err := run(t, runner, "resolve", "Song", "Artist"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Resolver: resolver})
		if err := run(t, runner, "resolve"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestIngestCommand(t *testing.T) {
	catalog := &fakeCatalog{albums: map[string]*services.Album{
		"alb-1": {
			ID:          "alb-1",
			Title:       "Homework",
			Artist:      "Daft Punk",
			ReleaseYear: 1997,
			Tracks: []services.Track{
				{ID: "t1", Title: "Revolution 909", TrackNumber: 1, Duration: 326},
				{ID: "t2", Title: "Da Funk", TrackNumber: 2, Duration: 328},
				{ID: "t3", Title: "Around the World", TrackNumber: 3, Duration: 429},
			},
		},
	}}
	resolver := &fakeResolver{results: map[string]services.Resolution{
		"Da Funk":          {Status: services.StatusFound, VideoID: "vid-df"},
		"Around the World": {Status: services.StatusFound, VideoID: "vid-atw"},
	}}

	t.Run("album", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: resolver, Catalog: catalog})
		if err := run(t, runner, "ingest", "--rate", "1000", "--json", "alb-1"); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}

		var out IngestOutput
		if err := json.Unmarshal(output.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if out.Title != "Homework" || out.Songs != 3 || out.Pending != 3 || out.Resolved != 2 || out.Missing != 1 || out.Failed != 0 {
			t.Errorf("unexpected summary %+v", out)
		}

		db := openRunnerDB(t, runner)
		songs, err := repositories.NewSongRepository(db).List(map[string]any{"unresolved": true})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 1 || songs[0].Title != "Revolution 909" {
			t.Errorf("expected only Revolution 909 unresolved, got %d songs", len(songs))
		}
	})

	t.Run("plain output", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: resolver, Catalog: catalog})
		if err := run(t, runner, "ingest", "--rate", "1000", "alb-1"); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
		for _, want := range []string{"Homework (", "resolved: 2 of 3", "missing:  1"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output %q", want, output.String())
			}
		}
	})

	t.Run("missing", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Resolver: &fakeResolver{}, Catalog: catalog})
		if err := run(t, runner, "ingest", "--rate", "1000", "alb-1"); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
		output.Reset()

		runner.resolver = resolver
		if err := run(t, runner, "ingest", "--missing", "--rate", "1000", "--json"); err != nil {
			t.Fatalf("ingest --missing failed: %v", err)
		}

		var out IngestOutput
		if err := json.Unmarshal(output.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if out.Songs != 3 || out.Resolved != 2 || out.Missing != 1 || out.AlbumID != "" {
			t.Errorf("unexpected summary %+v", out)
		}
	})

	t.Run("errors", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Resolver: resolver, Catalog: catalog})

		if err := run(t, runner, "ingest"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, runner, "ingest", "unknown"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func openRunnerDB(t *testing.T, r *Runner) *sql.DB {
	t.Helper()
	db, err := r.openDB()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newAPIRunner starts a server over a fresh database and returns a runner pointed at it.
func newAPIRunner(t *testing.T) (*Runner, *bytes.Buffer, []*models.Song) {
	t.Helper()
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	songRepo := repositories.NewSongRepository(db)
	var songs []*models.Song
	for _, title := range []string{"Da Funk", "Around the World"} {
		s := models.NewSong(title, "Daft Punk", 300)
		if err := songRepo.Create(s); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		songs = append(songs, s)
	}

	logger, _ := tu.NewTestLogger()
	ts := httptest.NewServer(server.New(server.Deps{DB: db, Logger: logger}))
	t.Cleanup(ts.Close)

	runner, output := newTestRunner(t, RunnerOpts{API: services.NewAPIClient(ts.URL, ts.Client())})
	return runner, output, songs
}

func TestPlaylistCommands(t *testing.T) {
	runner, output, songs := newAPIRunner(t)

	if err := run(t, runner, "playlists", "create", "--json", "-d", "Favourites", "--song", songs[0].ID, "Mix"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var created models.Playlist
	if err := json.Unmarshal(output.Bytes(), &created); err != nil {
		t.Fatalf("invalid JSON %q: %v", output.String(), err)
	}
	if created.ID == "" || created.Name != "Mix" || len(created.SongIDs) != 1 {
		t.Fatalf("unexpected playlist %+v", created)
	}

	t.Run("list", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "playlists", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Playlists (1)") || !strings.Contains(output.String(), created.ID) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("add and remove", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "playlists", "add", created.ID, songs[1].ID); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(output.String(), "(2 songs)") {
			t.Errorf("unexpected output %q", output.String())
		}

		if err := run(t, runner, "playlists", "add", created.ID, songs[1].ID); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for duplicate song, got %v", err)
		}

		output.Reset()
		if err := run(t, runner, "playlists", "remove", created.ID, songs[0].ID); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if !strings.Contains(output.String(), "(1 songs)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("show", func(t *testing.T) {
		output.Reset()
		if err := run(t, runner, "playlists", "show", created.ID); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		for _, want := range []string{"Mix", "Favourites", "Songs: 1", songs[1].ID} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("missing arguments", func(t *testing.T) {
		if err := run(t, runner, "playlists", "create"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, runner, "playlists", "add", created.ID); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := run(t, runner, "playlists", "delete", created.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		err := run(t, runner, "playlists", "show", created.ID)
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "404") {
			t.Errorf("expected 404 API error, got %v", err)
		}
	})
}

func TestGameCommands(t *testing.T) {
	runner, output, _ := newAPIRunner(t)

	for _, g := range [][2]string{{"Tetris", "puzzle"}, {"Doom", "shooter"}, {"Portal", "Puzzle"}} {
		if err := run(t, runner, "games", "add", "--category", g[1], g[0]); err != nil {
			t.Fatalf("add %s failed: %v", g[0], err)
		}
	}

	output.Reset()
	if err := run(t, runner, "games", "list", "--json", "--category", "puzzle"); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var games []models.Game
	if err := json.Unmarshal(output.Bytes(), &games); err != nil {
		t.Fatalf("invalid JSON %q: %v", output.String(), err)
	}
	if len(games) != 2 {
		t.Errorf("expected 2 puzzle games, got %d", len(games))
	}

	if err := run(t, runner, "games", "add"); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestPlaylistExport(t *testing.T) {
	runner, output := newTestRunner(t, RunnerOpts{})

	db := openRunnerDB(t, runner)
	song := models.NewSong("Digital Love", "Daft Punk", 301)
	song.VideoID = "vid-dl"
	if err := repositories.NewSongRepository(db).Create(song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}
	playlist := models.NewPlaylist("Export Me", "", "")
	playlist.SongIDs = []string{song.ID}
	if err := repositories.NewPlaylistRepository(db).Create(playlist); err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}

	base := filepath.Join(t.TempDir(), "export")
	if err := run(t, runner, "playlists", "export", "-f", "csv", "-o", base, playlist.ID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	if !strings.Contains(output.String(), base+"_songs.csv") {
		t.Errorf("expected file list in output, got %q", output.String())
	}
	if content := tu.MustReadFile(t, base+"_songs.csv"); !strings.Contains(content, "Digital Love") || !strings.Contains(content, "vid-dl") {
		t.Errorf("unexpected CSV %q", content)
	}

	if err := run(t, runner, "playlists", "export", "-f", "xml", playlist.ID); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if err := run(t, runner, "playlists", "export", "missing-id"); !errors.Is(err, shared.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}
