package repositories

import (
	"database/sql"
	"fmt"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
)

// RunFailureRepository persists per-record failures attached to ledger runs.
//
// Failures are immutable once written; there is no update or delete path.
type RunFailureRepository struct {
	db *sql.DB
}

// NewRunFailureRepository creates a new RunFailureRepository with the given database connection
func NewRunFailureRepository(db *sql.DB) *RunFailureRepository {
	return &RunFailureRepository{db: db}
}

// Create inserts a new run failure with a generated ID
func (r *RunFailureRepository) Create(failure *models.RunFailure) error {
	id := shared.GenerateID()
	failure.SetID(id)

	if err := failure.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO run_failures (id, run_id, source_id, title, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		failure.RunID(),
		failure.SourceID(),
		failure.Title(),
		failure.Error(),
		failure.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run failure: %w", err)
	}

	return nil
}

// ListByRun retrieves all failures recorded for the given run in insert order
func (r *RunFailureRepository) ListByRun(runID string) ([]*models.RunFailure, error) {
	query := `
		SELECT id, run_id, source_id, title, error, created_at
		FROM run_failures
		WHERE run_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer rows.Close()

	var failures []*models.RunFailure
	for rows.Next() {
		var (
			id        string
			run       string
			sourceID  string
			title     string
			errText   string
			createdAt sql.NullTime
		)
		if err := rows.Scan(&id, &run, &sourceID, &title, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run failure: %w", err)
		}

		failure := models.NewRunFailure(run, sourceID, title, errText)
		failure.SetID(id)
		failures = append(failures, failure)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return failures, nil
}
