// package formatter provides functions to export task records to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
)

// ExportToCSV converts task records to CSV format with columns: ID, Title, Status, Tags, Assignees, Due Date, Description, URL
func ExportToCSV(tasks []models.TaskRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Status", "Tags", "Assignees", "Due Date", "Description", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range tasks {
		record := []string{
			task.SourceID,
			task.Title,
			task.Status,
			strings.Join(task.Tags, "; "),
			strings.Join(task.Assignees, "; "),
			task.DueDate,
			task.Description,
			task.SourceURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a task record to Markdown format
func ExportToMarkdown(task models.TaskRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", task.Title))

	if task.Status != "" {
		buf.WriteString(fmt.Sprintf("**Status**: %s\n", task.Status))
	}
	if task.DueDate != "" {
		buf.WriteString(fmt.Sprintf("**Due**: %s\n", task.DueDate))
	}
	if len(task.Assignees) > 0 {
		buf.WriteString(fmt.Sprintf("**Assignees**: %s\n", strings.Join(task.Assignees, ", ")))
	}
	if len(task.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(task.Tags, ", ")))
	}
	buf.WriteString("\n")

	if task.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", task.Description))
	}

	if task.SourceURL != "" {
		buf.WriteString(fmt.Sprintf("[Source](%s)\n", task.SourceURL))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a task record to plain text format
func ExportToText(task models.TaskRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Task: %s\n", task.Title))
	if task.Status != "" {
		buf.WriteString(fmt.Sprintf("Status: %s\n", task.Status))
	}
	if task.DueDate != "" {
		buf.WriteString(fmt.Sprintf("Due: %s\n", task.DueDate))
	}
	if len(task.Assignees) > 0 {
		buf.WriteString(fmt.Sprintf("Assignees: %s\n", strings.Join(task.Assignees, ", ")))
	}
	if len(task.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(task.Tags, ", ")))
	}
	if task.Description != "" {
		buf.WriteString(fmt.Sprintf("\n%s\n", task.Description))
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes task records to a CSV file at filepath.
func WriteCSVExport(tasks []models.TaskRecord, filepath string) (string, error) {
	csvData, err := ExportToCSV(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport writes a task record to a Markdown file at filepath.
func WriteMarkdownExport(task models.TaskRecord, filepath string) (string, error) {
	mdData, err := ExportToMarkdown(task)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes a task record to a plain text file at filepath.
func WriteTextExport(task models.TaskRecord, filepath string) (string, error) {
	textData, err := ExportToText(task)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// ExportManifestEntry summarizes the outcome of one record's export.
type ExportManifestEntry struct {
	SourceID string   `json:"source_id"`
	Title    string   `json:"title"`
	Success  bool     `json:"success"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ExportManifest summarizes a bulk export run.
type ExportManifest struct {
	Format            string                `json:"format"`
	TotalRecords      int                   `json:"total_records"`
	SuccessfulExports int                   `json:"successful_exports"`
	FailedExports     int                   `json:"failed_exports"`
	OutputDirectory   string                `json:"output_directory"`
	Records           []ExportManifestEntry `json:"records"`
}

// WriteBulkExportManifest writes the manifest as indented JSON to path.
func WriteBulkExportManifest(manifest ExportManifest, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}
