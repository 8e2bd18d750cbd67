package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmori/ngx/internal/shared"
	"github.com/urfave/cli/v3"
)

// GitHubProject resolves and shows the target project's node ID.
func (r *Runner) GitHubProject(ctx context.Context, cmd *cli.Command) error {
	if r.github == nil {
		return fmt.Errorf("%w: GitHub service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("resolving project",
		"owner", r.config.GitHub.Owner,
		"number", r.config.GitHub.ProjectNumber)

	projectID, err := r.github.ProjectID(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Project: %s #%d\n", r.config.GitHub.Owner, r.config.GitHub.ProjectNumber)
	r.writePlain("Node ID: %s\n", projectID)
	return nil
}

// GitHubFields lists the target project's fields and their select options.
func (r *Runner) GitHubFields(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.github == nil {
		return fmt.Errorf("%w: GitHub service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("fetching project fields")

	fieldIDs, err := r.github.FieldIDs(ctx)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(fieldIDs, pretty)
	}

	keys := make([]string, 0, len(fieldIDs))
	for key := range fieldIDs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	r.writePlainHeader(fmt.Sprintf("Project Fields (%d entries)", len(fieldIDs)))
	for _, key := range keys {
		if strings.Contains(key, ":") {
			r.writePlain("  option %-28s %s\n", key, fieldIDs[key])
		} else {
			r.writePlain("field  %-30s %s\n", key, fieldIDs[key])
		}
	}

	return nil
}
