// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/services"
)

// MockSource is a test double for [services.TaskSource]. Behavior is
// configured per test through the function fields; unset fields return
// empty values.
type MockSource struct {
	TasksFunc  func(ctx context.Context) ([]models.TaskRecord, error)
	TaskFunc   func(ctx context.Context, sourceID string) (models.TaskRecord, error)
	SchemaFunc func(ctx context.Context) (map[string]services.SchemaProperty, error)
}

func (m *MockSource) Tasks(ctx context.Context) ([]models.TaskRecord, error) {
	if m.TasksFunc != nil {
		return m.TasksFunc(ctx)
	}
	return []models.TaskRecord{}, nil
}

func (m *MockSource) Task(ctx context.Context, sourceID string) (models.TaskRecord, error) {
	if m.TaskFunc != nil {
		return m.TaskFunc(ctx, sourceID)
	}
	return models.TaskRecord{SourceID: sourceID}, nil
}

func (m *MockSource) Schema(ctx context.Context) (map[string]services.SchemaProperty, error) {
	if m.SchemaFunc != nil {
		return m.SchemaFunc(ctx)
	}
	return map[string]services.SchemaProperty{}, nil
}

func (m *MockSource) Name() string { return "mock source" }

// MockProject is a test double for [services.ProjectWriter].
type MockProject struct {
	ProjectIDFunc  func(ctx context.Context) (string, error)
	FieldIDsFunc   func(ctx context.Context) (map[string]string, error)
	ImportTaskFunc func(ctx context.Context, task models.TaskRecord) (*services.ImportResult, error)
}

func (m *MockProject) ProjectID(ctx context.Context) (string, error) {
	if m.ProjectIDFunc != nil {
		return m.ProjectIDFunc(ctx)
	}
	return "PVT_mock", nil
}

func (m *MockProject) FieldIDs(ctx context.Context) (map[string]string, error) {
	if m.FieldIDsFunc != nil {
		return m.FieldIDsFunc(ctx)
	}
	return map[string]string{}, nil
}

func (m *MockProject) ImportTask(ctx context.Context, task models.TaskRecord) (*services.ImportResult, error) {
	if m.ImportTaskFunc != nil {
		return m.ImportTaskFunc(ctx, task)
	}
	return &services.ImportResult{ItemID: "item_mock"}, nil
}

func (m *MockProject) Name() string { return "mock project" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
