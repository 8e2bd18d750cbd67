package main

import (
	"context"
	"fmt"

	"github.com/tmori/ngx/internal/shared"
	"github.com/tmori/ngx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportRun writes Notion tasks to local files in the requested format.
func (r *Runner) ExportRun(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputDir := cmd.String("output")
	ids := cmd.StringSlice("id")
	workers := cmd.Int("workers")
	rate := cmd.Float("rate")

	if r.notion == nil {
		return fmt.Errorf("%w: Notion service not initialized", shared.ErrServiceUnavailable)
	}

	switch format {
	case "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: invalid format '%s' (must be json, csv, markdown, or txt)", shared.ErrInvalidArgument, format)
	}

	r.logger.Info("starting bulk export", "format", format, "ids", len(ids))
	r.writePlain("Exporting tasks (%s)...\n\n", format)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: workers,
		RateLimit:  rate,
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalRecords)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d records:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.Title, res.Error)
			}
		}
		return cli.Exit("", 1)
	}

	return nil
}
