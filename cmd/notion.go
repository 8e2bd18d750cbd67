package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmori/ngx/internal/shared"
	"github.com/urfave/cli/v3"
)

// NotionSchema shows the source database's property schema.
func (r *Runner) NotionSchema(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")

	if r.notion == nil {
		return fmt.Errorf("%w: Notion service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("fetching database schema", "database", r.config.Notion.DatabaseID)

	schema, err := r.notion.Schema(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if pretty {
		names := make([]string, 0, len(schema))
		for name := range schema {
			names = append(names, name)
		}
		sort.Strings(names)

		r.writePlainHeader(fmt.Sprintf("Database Schema (%d properties)", len(schema)))
		for _, name := range names {
			r.writePlain("%-24s %s\n", name, schema[name].Type)
		}
		return nil
	}

	return r.writeJSON(schema, false)
}

// NotionTasks lists the tasks in the source database after normalization.
func (r *Runner) NotionTasks(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.notion == nil {
		return fmt.Errorf("%w: Notion service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("listing notion tasks with limit %v", limit)

	records, err := r.notion.Tasks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	if useJSON {
		return r.writeJSON(records, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Notion Tasks (%d)", len(records)))
	for i, task := range records {
		r.writePlain("%d. %s", i+1, task.Title)
		if task.Status != "" {
			r.writePlain(" [%s]", task.Status)
		}
		if task.DueDate != "" {
			r.writePlain(" due %s", task.DueDate)
		}
		r.writePlain("\n")
		if len(task.Assignees) > 0 {
			r.writePlain("   assignees: %s\n", strings.Join(task.Assignees, ", "))
		}
		if len(task.Tags) > 0 {
			r.writePlain("   tags: %s\n", strings.Join(task.Tags, ", "))
		}
	}

	return nil
}
