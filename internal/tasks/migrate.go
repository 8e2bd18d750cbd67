// package tasks implements the record migration between the source database and the destination project.
//
// The core abstraction is MigrationEngine, which orchestrates the fetch, import, and export operations.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/services"
	"github.com/tmori/ngx/internal/shared"
)

// MigrationFailure describes one record that could not be imported.
type MigrationFailure struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Error    string `json:"error"`
}

// MigrationResult contains the statistics of one migration run.
//
// A record counts as a success when its draft item was created, even if some
// of its field updates failed afterwards.
type MigrationResult struct {
	Total    int                 `json:"total"`
	Success  int                 `json:"success"`
	Failed   int                 `json:"failed"`
	Skipped  int                 `json:"skipped"`
	Failures []MigrationFailure  `json:"failures,omitempty"`
	Tasks    []models.TaskRecord `json:"tasks,omitempty"` // populated on dry runs
	DryRun   bool                `json:"dry_run"`
}

// RunRecorder persists migration run outcomes to the local ledger.
//
// Recording is best-effort: ledger errors are logged and never disrupt a
// migration. The ledger is not consulted for de-duplication, so re-running
// a migration recreates destination items.
type RunRecorder interface {
	RecordRun(result *MigrationResult) error
}

// MigrationEngine orchestrates a full source → destination migration.
// Records are processed strictly in source fetch order, one at a time.
type MigrationEngine struct {
	source   services.TaskSource
	dest     services.ProjectWriter
	recorder RunRecorder
	logger   *log.Logger
}

// NewMigrationEngine creates a MigrationEngine with the provided services.
func NewMigrationEngine(source services.TaskSource, dest services.ProjectWriter, logger *log.Logger) *MigrationEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &MigrationEngine{
		source: source,
		dest:   dest,
		logger: logger,
	}
}

// SetRecorder attaches an optional run ledger recorder.
func (e *MigrationEngine) SetRecorder(recorder RunRecorder) {
	e.recorder = recorder
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MigrationEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run migrates every source record into the destination project.
//
// Identity resolution happens up front: a project or field lookup failure is
// fatal for the whole run, since no record can be imported without it. After
// that, an item creation failure is fatal only for its record; the run
// continues with the next one.
func (e *MigrationEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, dryRun bool) (*MigrationResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil && !dryRun {
		return nil, fmt.Errorf("%w: destination service not initialized", shared.ErrServiceUnavailable)
	}

	result := &MigrationResult{DryRun: dryRun}

	if !dryRun {
		e.sendProgress(progress, resolvingIdentityUpdate())
		if _, err := e.dest.ProjectID(ctx); err != nil {
			return nil, fmt.Errorf("failed to resolve project: %w", err)
		}
		if _, err := e.dest.FieldIDs(ctx); err != nil {
			return nil, fmt.Errorf("failed to resolve project fields: %w", err)
		}
	}

	e.sendProgress(progress, fetchingSourceUpdate())
	tasks, err := e.source.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch tasks: %v", shared.ErrAPIRequest, err)
	}

	result.Total = len(tasks)
	e.sendProgress(progress, fetchedSourceUpdate(len(tasks)))

	if dryRun {
		e.logger.Info("dry run enabled, skipping import", "tasks", len(tasks))
		for i, task := range tasks {
			e.sendProgress(progress, importingRecordUpdate(i+1, len(tasks), task))
			e.logger.Debug("would import task", "title", task.Title, "source", task.SourceID)
		}
		result.Tasks = tasks
		e.record(result)
		e.sendProgress(progress, completeUpdate(result))
		return result, nil
	}

	for i, task := range tasks {
		e.sendProgress(progress, importingRecordUpdate(i+1, len(tasks), task))

		importResult, err := e.dest.ImportTask(ctx, task)
		if err != nil {
			e.logger.Error("task import failed", "title", task.Title, "error", err)
			result.Failed++
			result.Failures = append(result.Failures, MigrationFailure{
				SourceID: task.SourceID,
				Title:    task.Title,
				Error:    err.Error(),
			})
			e.sendProgress(progress, importFailedUpdate(i+1, len(tasks), task, err))
			continue
		}

		result.Success++
		if failed := importResult.FailedSteps(); len(failed) > 0 {
			e.logger.Warn("task imported with failed field updates",
				"title", task.Title, "item", importResult.ItemID, "failed_steps", len(failed))
		}
	}

	e.record(result)
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// record persists the run to the ledger when a recorder is attached.
// Ledger errors are logged and swallowed to avoid disrupting migrations.
func (e *MigrationEngine) record(result *MigrationResult) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordRun(result); err != nil {
		e.logger.Warn("failed to record run in ledger", "error", err)
	}
}
