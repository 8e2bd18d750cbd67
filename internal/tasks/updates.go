package tasks

import (
	"fmt"

	"github.com/tmori/ngx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveIdentity Phase = iota
	FetchSource
	ImportRecord
	ExportRecord
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveIdentity:
		return "resolve_identity"
	case FetchSource:
		return "fetch_source"
	case ImportRecord:
		return "import_record"
	case ExportRecord:
		return "export_record"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolvingIdentityUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveIdentity,
		Step:    1,
		Total:   1,
		Message: "Resolving GitHub project and field IDs...",
	}
}

func fetchingSourceUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: "Fetching tasks from Notion...",
	}
}

func fetchedSourceUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d tasks", count),
	}
}

func importingRecordUpdate(step, total int, task models.TaskRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Importing task %d/%d: %s", step, total, task.Title),
		Data:    task,
	}
}

func importFailedUpdate(step, total int, task models.TaskRecord, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to import %q: %v", task.Title, err),
		Data:    task,
	}
}

func exportingRecordUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d/%d: %s", step, total, title),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecord,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to export %q: %v", title, err),
	}
}

func completeUpdate(result *MigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Migration complete: %d/%d succeeded", result.Success, result.Total),
		Data:    result,
	}
}
