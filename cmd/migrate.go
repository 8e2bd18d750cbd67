package main

import (
	"context"
	"fmt"

	"github.com/tmori/ngx/internal/services"
	"github.com/tmori/ngx/internal/shared"
	"github.com/tmori/ngx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// applyOverrides reloads configuration and rebuilds the migration services
// when the command carries config override flags.
func (r *Runner) applyOverrides(cmd *cli.Command) error {
	configPath := cmd.String("config")
	databaseID := cmd.String("database-id")
	projectNumber := cmd.Int("project-number")

	if configPath == "" && databaseID == "" && projectNumber == 0 {
		return nil
	}

	overridden := *r.config
	config := &overridden
	if configPath != "" {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", configPath, err)
		}
		config = loaded
	}
	if databaseID != "" {
		config.Notion.DatabaseID = databaseID
	}
	if projectNumber != 0 {
		config.GitHub.ProjectNumber = projectNumber
	}

	notion, err := services.NewNotionService(config.Notion, config.Mappings, r.logger)
	if err != nil {
		return err
	}
	github, err := services.NewGitHubService(config.GitHub, config.Fields, r.logger)
	if err != nil {
		return err
	}

	r.config = config
	r.notion = notion
	r.github = github
	r.engine = tasks.NewMigrationEngine(notion, github, r.logger)
	return nil
}

// MigrateRun runs a full Notion → GitHub Projects migration.
//
// Exits non-zero when any record failed to import, so scripts can detect
// partial migrations.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	noLedger := cmd.Bool("no-ledger")

	if err := r.applyOverrides(cmd); err != nil {
		return err
	}

	r.logger.Info("starting migration",
		"database", r.config.Notion.DatabaseID,
		"owner", r.config.GitHub.Owner,
		"project", r.config.GitHub.ProjectNumber,
		"dry_run", dryRun)

	r.writePlain("Starting task migration...\n")
	r.writePlain("Source: Notion database %s\n", r.config.Notion.DatabaseID)
	r.writePlain("Destination: %s/project %d\n\n", r.config.GitHub.Owner, r.config.GitHub.ProjectNumber)

	if !noLedger {
		ledger, closeLedger, err := r.openLedger()
		if err != nil {
			r.logger.Warn("run ledger unavailable", "error", err)
		} else {
			defer closeLedger()
			r.engine.SetRecorder(ledger)
		}
	}

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveIdentity:
				r.writePlain("🔎 %s\n", update.Message)
			case tasks.FetchSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ImportRecord:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	// Run the engine operation
	result, err := r.engine.Run(ctx, progressCh, dryRun)
	close(progressCh)

	if err != nil {
		return err
	}

	if dryRun {
		r.writePlainHeader("Dry Run Complete")
		r.writePlain("Would migrate %d tasks:\n", result.Total)
		for i, task := range result.Tasks {
			r.writePlain("  %d. %s", i+1, task.Title)
			if task.Status != "" {
				r.writePlain(" [%s]", task.Status)
			}
			r.writePlain("\n")
		}
		return nil
	}

	// Output summary
	r.writePlain("\n")
	r.writePlainHeader("Migration Complete!")
	r.writePlain("Total: %d\n", result.Total)
	r.writePlain("Imported: %d\n", result.Success)
	r.writePlain("Failed: %d\n", result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed to import %d tasks:\n", result.Failed)
		for _, failure := range result.Failures {
			r.writePlain("  - %s: %s\n", failure.Title, failure.Error)
		}
		return cli.Exit("", 1)
	}

	return nil
}
