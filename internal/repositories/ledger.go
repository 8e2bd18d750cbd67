package repositories

import (
	"database/sql"
	"fmt"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/tasks"
)

// Ledger records migration run outcomes, implementing [tasks.RunRecorder].
//
// The run's source and destination coordinates are fixed at construction
// since a migration engine is bound to one database and project pair.
type Ledger struct {
	runs          *RunRepository
	failures      *RunFailureRepository
	databaseID    string
	projectOwner  string
	projectNumber int
}

// NewLedger creates a Ledger recording runs against the given database and project.
func NewLedger(db *sql.DB, databaseID, owner string, projectNumber int) *Ledger {
	return &Ledger{
		runs:          NewRunRepository(db),
		failures:      NewRunFailureRepository(db),
		databaseID:    databaseID,
		projectOwner:  owner,
		projectNumber: projectNumber,
	}
}

// RecordRun persists the run statistics and each per-record failure.
func (l *Ledger) RecordRun(result *tasks.MigrationResult) error {
	run := models.NewRun(l.databaseID, l.projectOwner, l.projectNumber, result.DryRun)
	run.SetCounts(result.Total, result.Success, result.Failed, result.Skipped)

	if err := l.runs.Create(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for _, f := range result.Failures {
		failure := models.NewRunFailure(run.ID(), f.SourceID, f.Title, f.Error)
		if err := l.failures.Create(failure); err != nil {
			return fmt.Errorf("failed to record run failure: %w", err)
		}
	}

	return nil
}

// Runs lists the most recent runs, newest first. A non-positive limit lists all.
func (l *Ledger) Runs(limit int) ([]*models.Run, error) {
	criteria := map[string]any{}
	if limit > 0 {
		criteria["limit"] = limit
	}
	return l.runs.List(criteria)
}

// Failures lists the per-record failures for one run.
func (l *Ledger) Failures(runID string) ([]*models.RunFailure, error) {
	return l.failures.ListByRun(runID)
}
