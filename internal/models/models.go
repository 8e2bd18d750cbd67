// package models defines the data model for the task migration service
package models

import (
	"time"
)

// DefaultTitle is the placeholder used when a source record has no title property.
const DefaultTitle = "No Title"

// TaskRecord is the normalized form of one Notion page, produced by the
// source parser and consumed by the destination writer.
//
// A nil Tags or Assignees slice means the source property was absent; a
// non-nil empty slice means the property existed but held no values.
type TaskRecord struct {
	SourceID    string   `json:"source_id"`
	SourceURL   string   `json:"source_url,omitempty"`
	Title       string   `json:"title"`
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
	DueDate     string   `json:"due_date,omitempty"` // YYYY-MM-DD
	Description string   `json:"description,omitempty"`
}

// FieldKind classifies a GitHub Project field by the mutation payload it
// accepts. The kind is looked up from a static table keyed by field name,
// populated once from configuration.
type FieldKind int

const (
	FieldKindText FieldKind = iota
	FieldKindDate
	FieldKindSingleSelect
)

func (k FieldKind) String() string {
	switch k {
	case FieldKindText:
		return "text"
	case FieldKindDate:
		return "date"
	case FieldKindSingleSelect:
		return "single_select"
	default:
		return ""
	}
}

// KindTable maps field names to the mutation kind used when writing them.
type KindTable map[string]FieldKind

// Kind returns the mutation kind for the named field, defaulting to text.
func (t KindTable) Kind(name string) FieldKind {
	if kind, ok := t[name]; ok {
		return kind
	}
	return FieldKindText
}

// Model defines the base interface for all persistent models in the task migration service.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
