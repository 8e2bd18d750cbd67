package ui

import (
	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/tasks"
)

// tasksFetchedMsg carries the source database contents into the task list view.
type tasksFetchedMsg struct {
	tasks []models.TaskRecord
	err   error
}

// progressUpdateMsg forwards one engine progress update into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// migrationCompleteMsg carries the final run outcome into the result view.
type migrationCompleteMsg struct {
	result *tasks.MigrationResult
	err    error
}
