// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// notionCommand handles source database operations
func notionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "notion",
		Aliases: []string{"n"},
		Usage:   "Notion database operations",
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Show the source database's property schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.NotionSchema,
			},
			{
				Name:  "tasks",
				Usage: "List tasks in the source database",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tasks to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.NotionTasks,
			},
		},
	}
}

// githubCommand handles destination project operations
func githubCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "github",
		Aliases: []string{"gh"},
		Usage:   "GitHub Projects operations",
		Commands: []*cli.Command{
			{
				Name:   "project",
				Usage:  "Resolve and show the target project's node ID",
				Action: r.GitHubProject,
			},
			{
				Name:  "fields",
				Usage: "List the target project's fields and select options",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.GitHubFields,
			},
		},
	}
}

// migrateCommand runs the full Notion → GitHub Projects migration
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate all tasks from Notion to the GitHub Project",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Fetch and show tasks without writing to GitHub",
			},
			&cli.BoolFlag{
				Name:  "no-ledger",
				Usage: "Skip recording the run in the local ledger",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "database-id",
				Usage: "Override the source database ID",
			},
			&cli.IntFlag{
				Name:  "project-number",
				Usage: "Override the target project number",
			},
		},
		Action: r.MigrateRun,
	}
}

// exportCommand writes source tasks to local files
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export Notion tasks to local files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: json, csv, markdown, txt",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: notion_export_{timestamp})",
			},
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Export only the given page IDs (repeatable)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent export workers",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Source API requests per second",
				Value: 5.0,
			},
		},
		Action: r.ExportRun,
	}
}

// historyCommand inspects the local run ledger
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past migration runs from the local ledger",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "failures",
				Usage: "Show per-record failures for the given run ID",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.HistoryList,
	}
}

// setupCommand handles setup operations for configuration and the ledger database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the ledger database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a config.toml from the embedded template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive migration.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for task migration",
		Action:  r.TUI,
	}
}
