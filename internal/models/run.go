package models

import (
	"fmt"
	"time"
)

// Run is a persisted record of one migration run.
//
// The ledger is observability only: it is never consulted to de-duplicate
// re-runs, so re-running the tool recreates destination items.
type Run struct {
	id            string
	sequence      int
	databaseID    string
	projectOwner  string
	projectNumber int
	dryRun        bool
	total         int
	success       int
	failed        int
	skipped       int
	createdAt     time.Time
	updatedAt     time.Time
	deletedAt     *time.Time
}

// NewRun creates a Run for the given source database and destination project.
func NewRun(databaseID, owner string, projectNumber int, dryRun bool) *Run {
	now := time.Now()
	return &Run{
		databaseID:    databaseID,
		projectOwner:  owner,
		projectNumber: projectNumber,
		dryRun:        dryRun,
		createdAt:     now,
		updatedAt:     now,
	}
}

func (r *Run) ID() string           { return r.id }
func (r *Run) Sequence() int        { return r.sequence }
func (r *Run) DatabaseID() string   { return r.databaseID }
func (r *Run) ProjectOwner() string { return r.projectOwner }
func (r *Run) ProjectNumber() int   { return r.projectNumber }
func (r *Run) DryRun() bool         { return r.dryRun }
func (r *Run) Total() int           { return r.total }
func (r *Run) Success() int         { return r.success }
func (r *Run) Failed() int          { return r.failed }
func (r *Run) Skipped() int         { return r.skipped }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time { return r.deletedAt }

func (r *Run) SetID(id string)           { r.id = id }
func (r *Run) SetSequence(seq int)       { r.sequence = seq }
func (r *Run) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *Run) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// SetCounts records the final statistics for the run.
func (r *Run) SetCounts(total, success, failed, skipped int) {
	r.total = total
	r.success = success
	r.failed = failed
	r.skipped = skipped
}

// Validate checks that the run references a source database and a destination project.
func (r *Run) Validate() error {
	if r.databaseID == "" {
		return fmt.Errorf("run requires a source database ID")
	}
	if r.projectOwner == "" {
		return fmt.Errorf("run requires a project owner")
	}
	if r.projectNumber <= 0 {
		return fmt.Errorf("run requires a positive project number")
	}
	return nil
}

// RunFailure is a persisted per-record failure attached to a Run.
type RunFailure struct {
	id        string
	runID     string
	sourceID  string
	title     string
	errText   string
	createdAt time.Time
}

// NewRunFailure creates a RunFailure for the given run and source record.
func NewRunFailure(runID, sourceID, title, errText string) *RunFailure {
	return &RunFailure{
		runID:     runID,
		sourceID:  sourceID,
		title:     title,
		errText:   errText,
		createdAt: time.Now(),
	}
}

func (f *RunFailure) ID() string           { return f.id }
func (f *RunFailure) RunID() string        { return f.runID }
func (f *RunFailure) SourceID() string     { return f.sourceID }
func (f *RunFailure) Title() string        { return f.title }
func (f *RunFailure) Error() string        { return f.errText }
func (f *RunFailure) CreatedAt() time.Time { return f.createdAt }
func (f *RunFailure) UpdatedAt() time.Time { return f.createdAt }

func (f *RunFailure) SetID(id string) { f.id = id }

// Validate checks that the failure is attached to a run.
func (f *RunFailure) Validate() error {
	if f.runID == "" {
		return fmt.Errorf("run failure requires a run ID")
	}
	return nil
}
