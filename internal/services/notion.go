// Notion API implementation of [TaskSource]
//
// Notion API response types based on https://developers.notion.com/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
)

const (
	notionBaseURL  = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"
	notionPageSize = 100
)

// NotionRichText represents one plain-text run of a rich text value.
type NotionRichText struct {
	PlainText string `json:"plain_text"`
}

// NotionOption represents a select or multi-select option value.
type NotionOption struct {
	Name string `json:"name"`
}

// NotionPerson represents a user referenced by a people property.
type NotionPerson struct {
	Name string `json:"name"`
}

// NotionDate represents a date property value.
type NotionDate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NotionProperty is one typed property of a page. The Type tag selects which
// payload field is populated; all others decode to their zero values.
type NotionProperty struct {
	Type        string           `json:"type"`
	Title       []NotionRichText `json:"title"`
	RichText    []NotionRichText `json:"rich_text"`
	Status      *NotionOption    `json:"status"`
	MultiSelect []NotionOption   `json:"multi_select"`
	People      []NotionPerson   `json:"people"`
	Date        *NotionDate      `json:"date"`
}

// NotionPage represents one page (record) of a Notion database.
type NotionPage struct {
	ID         string                    `json:"id"`
	URL        string                    `json:"url"`
	Properties map[string]NotionProperty `json:"properties"`
}

// notionQueryResponse is one page of database query results.
type notionQueryResponse struct {
	Results    []NotionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// notionDatabase is the database retrieve response, reduced to its schema.
type notionDatabase struct {
	Properties map[string]SchemaProperty `json:"properties"`
}

// NotionService implements the [TaskSource] interface for the Notion API.
// Each fetched page is normalized into a [models.TaskRecord] by dispatching
// on property type tags; unknown types are ignored.
type NotionService struct {
	apiKey     string
	databaseID string
	mappings   shared.MappingsConfig
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewNotionService creates a Notion service for the configured database.
// Missing credentials are a configuration error surfaced immediately.
func NewNotionService(cfg shared.NotionConfig, mappings shared.MappingsConfig, logger *log.Logger) (*NotionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: notion api_key not set", shared.ErrMissingCredentials)
	}
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: notion database_id not set", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &NotionService{
		apiKey:     cfg.APIKey,
		databaseID: cfg.DatabaseID,
		mappings:   mappings,
		baseURL:    notionBaseURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}, nil
}

func (s *NotionService) Name() string {
	return "Notion"
}

// doRequest performs an authenticated HTTP request to the Notion API.
func (s *NotionService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Schema retrieves the database's property schema.
func (s *NotionService) Schema(ctx context.Context) (map[string]SchemaProperty, error) {
	var db notionDatabase
	endpoint := fmt.Sprintf("/databases/%s", s.databaseID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &db); err != nil {
		return nil, err
	}
	return db.Properties, nil
}

// Tasks retrieves every page of the database and normalizes each into a
// [models.TaskRecord]. Pagination is drained completely before parsing; the
// full result set is materialized in memory.
func (s *NotionService) Tasks(ctx context.Context) ([]models.TaskRecord, error) {
	pages, err := s.queryAll(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.TaskRecord, 0, len(pages))
	for _, page := range pages {
		tasks = append(tasks, s.parsePage(page))
	}
	return tasks, nil
}

// Task retrieves a single page by ID and normalizes it into a
// [models.TaskRecord].
func (s *NotionService) Task(ctx context.Context, sourceID string) (models.TaskRecord, error) {
	var page NotionPage
	endpoint := fmt.Sprintf("/pages/%s", sourceID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return models.TaskRecord{}, err
	}
	return s.parsePage(page), nil
}

// queryAll drains the database query cursor until no next page remains.
func (s *NotionService) queryAll(ctx context.Context) ([]NotionPage, error) {
	endpoint := fmt.Sprintf("/databases/%s/query", s.databaseID)

	var pages []NotionPage
	cursor := ""
	for {
		body := map[string]any{"page_size": notionPageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var resp notionQueryResponse
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// parsePage converts one page into a TaskRecord by dispatching on each
// property's type tag. Unknown types produce no field; missing nested values
// default to empty rather than failing the record. Properties are visited in
// sorted name order so two properties of the same type resolve the same way
// on every run.
func (s *NotionService) parsePage(page NotionPage) models.TaskRecord {
	task := models.TaskRecord{
		SourceID:  page.ID,
		SourceURL: page.URL,
		Title:     models.DefaultTitle,
	}

	names := make([]string, 0, len(page.Properties))
	for name := range page.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := page.Properties[name]
		switch prop.Type {
		case "title":
			task.Title = concatPlainText(prop.Title)

		case "status":
			name := ""
			if prop.Status != nil {
				name = prop.Status.Name
			}
			task.Status = s.mappings.Status.Map(name)

		case "multi_select":
			tags := make([]string, 0, len(prop.MultiSelect))
			for _, option := range prop.MultiSelect {
				tags = append(tags, s.mappings.Tags.Map(option.Name))
			}
			task.Tags = tags

		case "people":
			assignees := make([]string, 0, len(prop.People))
			for _, person := range prop.People {
				if person.Name != "" {
					assignees = append(assignees, person.Name)
				}
			}
			task.Assignees = assignees

		case "date":
			if prop.Date == nil || prop.Date.Start == "" {
				continue
			}
			due, err := parseNotionDate(prop.Date.Start)
			if err != nil {
				s.logger.Warn("failed to parse date property", "page", page.ID, "value", prop.Date.Start)
				continue
			}
			task.DueDate = due

		case "rich_text":
			if text := concatPlainText(prop.RichText); text != "" {
				task.Description = text
			}
		}
	}

	return task
}

// concatPlainText joins the plain-text runs of a rich text value in source order.
func concatPlainText(runs []NotionRichText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.PlainText)
	}
	return b.String()
}

// notionDateLayouts are the timestamp shapes Notion emits for date starts:
// full ISO-8601 with offset or literal Z, naive datetimes, and bare dates.
var notionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseNotionDate reformats an ISO-8601 timestamp as a YYYY-MM-DD calendar date.
func parseNotionDate(value string) (string, error) {
	for _, layout := range notionDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format: %q", value)
}
