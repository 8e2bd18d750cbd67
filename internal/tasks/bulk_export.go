package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tmori/ngx/internal/formatter"
	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk record exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: notion_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Source requests per second (default: 5)
}

// RecordFetcher fetches a single record by its source ID. Implemented by
// sources that expose per-record retrieval alongside full database queries.
type RecordFetcher interface {
	Task(ctx context.Context, sourceID string) (models.TaskRecord, error)
}

// RecordExportJob is one record queued for file export.
type RecordExportJob struct {
	SourceID string
	Task     models.TaskRecord
}

// RecordExportResult is the outcome of exporting one record.
type RecordExportResult struct {
	SourceID string
	Title    string
	Success  bool
	Files    []string
	Error    error
}

// BulkExportResult contains all data from a bulk export operation.
type BulkExportResult struct {
	TotalRecords      int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []RecordExportResult
}

// BulkExport writes source records to local files concurrently.
//
// When ids is empty the whole database is drained in one query; otherwise
// each record is fetched individually, paced by the rate limiter. File
// writes run on a worker pool; partial failures are collected rather than
// aborting the export. A manifest summarizing the results is written last.
func (e *MigrationEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source service not initialized", shared.ErrServiceUnavailable)
	}

	var fetcher RecordFetcher
	if len(ids) > 0 {
		var ok bool
		if fetcher, ok = e.source.(RecordFetcher); !ok {
			return nil, fmt.Errorf("%w: source does not support per-record fetch", shared.ErrInvalidArgument)
		}
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("notion_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		OutputDirectory: opts.OutputDir,
		Results:         []RecordExportResult{},
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan RecordExportJob, opts.NumWorkers)
	results := make(chan RecordExportResult, opts.NumWorkers)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// feeder: fetch records and queue export jobs
	var feedErr error
	go func() {
		defer close(jobs)

		if len(ids) == 0 {
			tasks, err := e.source.Tasks(ctx)
			if err != nil {
				feedErr = fmt.Errorf("%w: failed to fetch tasks: %v", shared.ErrAPIRequest, err)
				return
			}
			result.TotalRecords = len(tasks)
			for i, task := range tasks {
				e.sendProgress(prog, exportingRecordUpdate(i+1, len(tasks), task.Title))
				select {
				case jobs <- RecordExportJob{SourceID: task.SourceID, Task: task}:
				case <-ctx.Done():
					return
				}
			}
			return
		}

		result.TotalRecords = len(ids)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			task, err := fetcher.Task(ctx, id)
			if err != nil {
				results <- RecordExportResult{
					SourceID: id,
					Title:    fmt.Sprintf("Unknown (%s)", id),
					Error:    fmt.Errorf("failed to fetch record: %w", err),
				}
				continue
			}

			e.sendProgress(prog, exportingRecordUpdate(i+1, len(ids), task.Title))
			select {
			case jobs <- RecordExportJob{SourceID: id, Task: task}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, result.TotalRecords, res.Title, res.Error))
		}
	}

	if feedErr != nil {
		return nil, feedErr
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(manifestFor(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes queued records to files.
func (e *MigrationEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan RecordExportJob,
	results chan<- RecordExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportRecord(job, opts)
	}
}

// exportRecord writes one record to disk in the requested format.
func (e *MigrationEngine) exportRecord(job RecordExportJob, opts BulkExportOpts) RecordExportResult {
	result := RecordExportResult{
		SourceID: job.SourceID,
		Title:    job.Task.Title,
		Files:    []string{},
	}

	base := filepath.Join(opts.OutputDir, job.SourceID)

	switch opts.Format {
	case "csv":
		csvPath, err := formatter.WriteCSVExport([]models.TaskRecord{job.Task}, base+".csv")
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvPath}
		result.Success = true

	case "markdown":
		mdPath, err := formatter.WriteMarkdownExport(job.Task, base+".md")
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{mdPath}
		result.Success = true

	case "txt":
		txtPath, err := formatter.WriteTextExport(job.Task, base+".txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{txtPath}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := base + ".json"
		data, err := shared.MarshalJSON(job.Task, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}

// manifestFor converts the export outcome into its serializable manifest form.
func manifestFor(result *BulkExportResult, format string) formatter.ExportManifest {
	manifest := formatter.ExportManifest{
		Format:            format,
		TotalRecords:      result.TotalRecords,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		OutputDirectory:   result.OutputDirectory,
	}
	for _, res := range result.Results {
		entry := formatter.ExportManifestEntry{
			SourceID: res.SourceID,
			Title:    res.Title,
			Success:  res.Success,
			Files:    res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		manifest.Records = append(manifest.Records, entry)
	}
	return manifest
}
