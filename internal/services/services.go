// package services defines interfaces for the source database and destination project APIs
//
// Notion (source), GitHub Projects V2 (destination)
package services

import (
	"context"

	"github.com/tmori/ngx/internal/models"
)

// TaskSource defines the read side of a migration: a database-like service
// holding property-typed task records.
type TaskSource interface {
	// Tasks retrieves every record in the source database, fully draining
	// pagination before returning, and normalizes each into a TaskRecord.
	Tasks(ctx context.Context) ([]models.TaskRecord, error)

	// Schema retrieves the source database's property schema.
	Schema(ctx context.Context) (map[string]SchemaProperty, error)

	// Name returns the name of the service (e.g., "Notion")
	Name() string
}

// ProjectWriter defines the write side of a migration: a project tracker
// accepting draft items enriched field by field.
type ProjectWriter interface {
	// ProjectID resolves the destination project's opaque node ID.
	// The result is memoized for the process lifetime on first success.
	ProjectID(ctx context.Context) (string, error)

	// FieldIDs resolves the project's field ID map. Single-select fields
	// contribute an additional "Field:Option" entry per option.
	FieldIDs(ctx context.Context) (map[string]string, error)

	// ImportTask creates a draft item for the record and applies its field
	// values as a sequence of best-effort mutations. A non-nil error means
	// item creation itself failed; per-field failures are reported in the
	// result's step outcomes and do not fail the record.
	ImportTask(ctx context.Context, task models.TaskRecord) (*ImportResult, error)

	// Name returns the name of the service (e.g., "GitHub Projects")
	Name() string
}

// SchemaProperty describes one property of the source database schema.
type SchemaProperty struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ImportStep records the outcome of one mutation in the item construction
// sequence. Skipped steps had nothing to write or no matching field.
type ImportStep struct {
	Name    string
	Skipped bool
	Err     error
}

// ImportResult aggregates the per-step outcomes for one imported record.
type ImportResult struct {
	ItemID string
	Steps  []ImportStep
}

// FailedSteps returns the steps that attempted a mutation and failed.
func (r *ImportResult) FailedSteps() []ImportStep {
	var failed []ImportStep
	for _, step := range r.Steps {
		if step.Err != nil {
			failed = append(failed, step)
		}
	}
	return failed
}
