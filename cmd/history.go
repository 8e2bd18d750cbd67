package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// HistoryList shows past migration runs recorded in the local ledger.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	failuresRunID := cmd.String("failures")
	useJSON := cmd.Bool("json")

	ledger, closeLedger, err := r.openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	if failuresRunID != "" {
		failures, err := ledger.Failures(failuresRunID)
		if err != nil {
			return err
		}

		if useJSON {
			entries := make([]map[string]string, 0, len(failures))
			for _, f := range failures {
				entries = append(entries, map[string]string{
					"source_id": f.SourceID(),
					"title":     f.Title(),
					"error":     f.Error(),
				})
			}
			return r.writeJSON(entries, true)
		}

		r.writePlainHeader("Run Failures")
		if len(failures) == 0 {
			r.writePlain("No failures recorded for run %s\n", failuresRunID)
			return nil
		}
		for _, f := range failures {
			r.writePlain("  - %s (%s): %s\n", f.Title(), f.SourceID(), f.Error())
		}
		return nil
	}

	runs, err := ledger.Runs(limit)
	if err != nil {
		return err
	}

	if useJSON {
		entries := make([]map[string]any, 0, len(runs))
		for _, run := range runs {
			entries = append(entries, map[string]any{
				"id":             run.ID(),
				"database_id":    run.DatabaseID(),
				"project_owner":  run.ProjectOwner(),
				"project_number": run.ProjectNumber(),
				"dry_run":        run.DryRun(),
				"total":          run.Total(),
				"success":        run.Success(),
				"failed":         run.Failed(),
				"created_at":     run.CreatedAt(),
			})
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader("Migration History")
	if len(runs) == 0 {
		r.writePlain("No runs recorded yet. Run 'ngx migrate' first.\n")
		return nil
	}

	for _, run := range runs {
		mode := ""
		if run.DryRun() {
			mode = " (dry run)"
		}
		r.writePlain("%s%s\n", run.CreatedAt().Format("2006-01-02 15:04:05"), mode)
		r.writePlain("  run: %s\n", run.ID())
		r.writePlain("  target: %s/project %d\n", run.ProjectOwner(), run.ProjectNumber())
		r.writePlain("  total: %d, imported: %d, failed: %d\n\n", run.Total(), run.Success(), run.Failed())
	}

	return nil
}
