// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write the default config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand runs the REST API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// resolveCommand looks up a single video id.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Find the YouTube video for a song",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "title"},
			&cli.StringArg{Name: "artist"},
		},
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Resolve,
	}
}

// ingestCommand imports albums from the catalog.
func ingestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Import an album from the music catalog and resolve its songs",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "album-id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "missing",
				Usage: "Resolve every stored song without a video instead of importing an album",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent resolver calls (default from config)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Resolver requests per second (default from config)",
			},
			jsonFlag(),
		},
		Action: r.Ingest,
	}
}

// playlistsCommand manages playlists through a running server.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists on a running server",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistsList,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Playlist description",
					},
					&cli.StringSliceFlag{
						Name:    "song",
						Aliases: []string{"s"},
						Usage:   "Song id to include (repeatable)",
					},
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Playlist owner",
					},
					jsonFlag(),
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "show",
				Usage: "Show a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsDelete,
			},
			{
				Name:  "add",
				Usage: "Append a song to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song-id"},
				},
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a song from a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "song-id"},
				},
				Action: r.PlaylistsRemove,
			},
			{
				Name:  "export",
				Usage: "Export a playlist from the local database",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown or text",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output base path (default: playlist id)",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// gamesCommand manages games through a running server.
func gamesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "games",
		Usage: "Manage games on a running server",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List games",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only show games in this category",
					},
					jsonFlag(),
				},
				Action: r.GamesList,
			},
			{
				Name:  "add",
				Usage: "Add a game",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Game category",
					},
					&cli.StringFlag{
						Name:  "thumbnail",
						Usage: "Thumbnail URL",
					},
					jsonFlag(),
				},
				Action: r.GamesAdd,
			},
		},
	}
}

// playerCommand launches the terminal player.
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "player",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file while the player owns the terminal",
				Value: "./tmp/tuneup-player.log",
			},
		},
		Action: r.Player,
	}
}
