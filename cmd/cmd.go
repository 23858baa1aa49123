// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the REST backend.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalogue backend server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.host and server.port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the server in a browser once it is listening",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func kindFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kind",
		Aliases: []string{"k"},
		Usage:   "Media kind (video or photo), defaults to the current tab",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, json, csv, markdown or html",
		Value:   "text",
	}
}

// catalogCommand drives the client-side catalogue engine.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Browse and edit the local catalogue",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List items of one kind, or the whole library with --all",
				Flags: []cli.Flag{
					kindFlag(),
					formatFlag(),
					&cli.StringFlag{Name: "tag", Usage: "Only list items with this tag (defaults to the active filter)"},
					&cli.BoolFlag{Name: "all", Usage: "List videos and photos together"},
				},
				Action: r.CatalogList,
			},
			{
				Name:   "tags",
				Usage:  "List the distinct tags of one kind, or of everything with --all",
				Flags:  []cli.Flag{kindFlag(), &cli.BoolFlag{Name: "all", Usage: "Tags of videos and photos"}},
				Action: r.CatalogTags,
			},
			{
				Name:      "add",
				Usage:     "Add a video and persist it to the backend",
				Arguments: []cli.Argument{&cli.StringArg{Name: "src"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Video title"},
					&cli.StringFlag{Name: "tags", Usage: "Comma separated tags"},
					&cli.StringFlag{Name: "path", Usage: "Durable location sent to the backend (defaults to src)"},
					&cli.BoolFlag{Name: "no-persist", Usage: "Keep the video local only"},
				},
				Action: r.CatalogAdd,
			},
			{
				Name:  "tag",
				Usage: "Edit tags of an item",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add comma separated tags to an item",
						Arguments: []cli.Argument{&cli.StringArg{Name: "id"}, &cli.StringArg{Name: "tags"}},
						Flags:     []cli.Flag{kindFlag()},
						Action:    r.CatalogTagAdd,
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "Remove the tag at a 1-based position",
						Arguments: []cli.Argument{&cli.StringArg{Name: "id"}, &cli.StringArg{Name: "position"}},
						Flags:     []cli.Flag{kindFlag()},
						Action:    r.CatalogTagRemove,
					},
				},
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an item locally",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{kindFlag()},
				Action:    r.CatalogRemove,
			},
			{
				Name:      "delete",
				Usage:     "Delete a video locally and on the backend",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.CatalogDelete,
			},
			{
				Name:      "select",
				Usage:     "Select an item and switch to its tab",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{kindFlag()},
				Action:    r.CatalogSelect,
			},
			{
				Name:      "filter",
				Usage:     "Set the tag filter (no argument clears it)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "tag"}},
				Action:    r.CatalogFilter,
			},
			{
				Name:   "sync",
				Usage:  "Merge backend videos into the catalogue",
				Action: r.CatalogSync,
			},
			{
				Name:  "export",
				Usage: "Write the library to a file",
				Flags: []cli.Flag{
					formatFlag(),
					kindFlag(),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (base name for csv, directory for markdown)"},
					&cli.BoolFlag{Name: "compress", Aliases: []string{"z"}, Usage: "zstd compress the output (json, text and html)"},
				},
				Action: r.CatalogExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalogue browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the TUI runs", Value: "./tmp/wvp-tui.log"},
		},
		Action: r.TUI,
	}
}
