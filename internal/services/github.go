// GitHub Projects V2 implementation of [ProjectWriter]
//
// Uses the GraphQL API (https://docs.github.com/en/graphql) for project
// lookups and item mutations.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
	"golang.org/x/oauth2"
)

const githubGraphQLURL = "https://api.github.com/graphql"

// noteFieldID is the synthetic field ID used by the body update mutation.
const noteFieldID = "PVTF_NOTE"

const userProjectQuery = `
query($owner: String!, $projectNumber: Int!) {
    user(login: $owner) {
        projectV2(number: $projectNumber) {
            id
        }
    }
}`

const orgProjectQuery = `
query($owner: String!, $projectNumber: Int!) {
    organization(login: $owner) {
        projectV2(number: $projectNumber) {
            id
        }
    }
}`

const projectFieldsQuery = `
query($projectId: ID!) {
    node(id: $projectId) {
        ... on ProjectV2 {
            fields(first: 20) {
                nodes {
                    ... on ProjectV2Field {
                        id
                        name
                    }
                    ... on ProjectV2IterationField {
                        id
                        name
                    }
                    ... on ProjectV2SingleSelectField {
                        id
                        name
                        options {
                            id
                            name
                        }
                    }
                }
            }
        }
    }
}`

const createDraftItemMutation = `
mutation($projectId: ID!, $title: String!) {
    addProjectV2DraftItem(input: {
        projectId: $projectId,
        title: $title
    }) {
        projectItem {
            id
        }
    }
}`

const updateItemBodyMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $body: String!) {
    updateProjectV2ItemFieldValue(input: {
        projectId: $projectId,
        itemId: $itemId,
        fieldId: $fieldId,
        value: {
            text: $body
        }
    }) {
        clientMutationId
    }
}`

const updateSelectFieldMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $optionId: String!) {
    updateProjectV2ItemFieldValue(input: {
        projectId: $projectId,
        itemId: $itemId,
        fieldId: $fieldId,
        value: {
            singleSelectOptionId: $optionId
        }
    }) {
        clientMutationId
    }
}`

const updateDateFieldMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $dateValue: Date!) {
    updateProjectV2ItemFieldValue(input: {
        projectId: $projectId,
        itemId: $itemId,
        fieldId: $fieldId,
        value: {
            date: $dateValue
        }
    }) {
        clientMutationId
    }
}`

const updateTextFieldMutation = `
mutation($projectId: ID!, $itemId: ID!, $fieldId: ID!, $textValue: String!) {
    updateProjectV2ItemFieldValue(input: {
        projectId: $projectId,
        itemId: $itemId,
        fieldId: $fieldId,
        value: {
            text: $textValue
        }
    }) {
        clientMutationId
    }
}`

// graphQLError is one entry of a GraphQL error list. The first message is
// treated as authoritative.
type graphQLError struct {
	Message string `json:"message"`
}

// graphQLResponse is the envelope of every GraphQL response.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// GitHubService implements the [ProjectWriter] interface for GitHub Projects V2.
//
// The project node ID and field ID map are resolved lazily on first use and
// memoized for the process lifetime. Failures are never cached: a failed
// resolution is retried on the next call. The cache is not invalidated, so a
// schema change mid-run fails loudly rather than silently re-resolving.
type GitHubService struct {
	owner         string
	projectNumber int
	fields        shared.FieldsConfig
	kinds         models.KindTable
	graphqlURL    string
	httpClient    *http.Client
	logger        *log.Logger

	mu        sync.Mutex
	projectID string
	fieldIDs  map[string]string
}

// NewGitHubService creates a GitHub Projects service for the configured
// owner and project number, authenticating with a static token.
func NewGitHubService(cfg shared.GitHubConfig, fields shared.FieldsConfig, logger *log.Logger) (*GitHubService, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: github token not set", shared.ErrMissingCredentials)
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("%w: github owner not set", shared.ErrMissingCredentials)
	}
	if cfg.ProjectNumber <= 0 {
		return nil, fmt.Errorf("%w: github project_number not set", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})

	return &GitHubService{
		owner:         cfg.Owner,
		projectNumber: cfg.ProjectNumber,
		fields:        fields,
		kinds: models.KindTable{
			fields.Status:    models.FieldKindSingleSelect,
			fields.DueDate:   models.FieldKindDate,
			fields.Assignees: models.FieldKindText,
			fields.Labels:    models.FieldKindText,
		},
		graphqlURL: githubGraphQLURL,
		httpClient: oauth2.NewClient(context.Background(), src),
		logger:     logger,
	}, nil
}

func (s *GitHubService) Name() string {
	return "GitHub Projects"
}

// doGraphQL posts one GraphQL operation and decodes its data payload.
// A non-empty error list fails the call with the first reported message.
func (s *GitHubService) doGraphQL(ctx context.Context, query string, variables map[string]any, result any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, envelope.Errors[0].Message)
	}

	if result != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}

// ProjectID resolves the project's opaque node ID, memoizing on first success.
func (s *GitHubService) ProjectID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectIDLocked(ctx)
}

// projectIDLocked resolves and caches the project ID. Callers must hold s.mu.
func (s *GitHubService) projectIDLocked(ctx context.Context) (string, error) {
	if s.projectID != "" {
		return s.projectID, nil
	}

	id, err := s.resolveProjectID(ctx)
	if err != nil {
		return "", err
	}

	s.projectID = id
	return id, nil
}

// resolveProjectID tries a user-scoped lookup, then an organization-scoped
// one. The owner's scope kind is not known in advance, and the API requires
// selecting the matching query shape.
func (s *GitHubService) resolveProjectID(ctx context.Context) (string, error) {
	variables := map[string]any{
		"owner":         s.owner,
		"projectNumber": s.projectNumber,
	}

	var userResp struct {
		User *struct {
			ProjectV2 *struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"user"`
	}
	if err := s.doGraphQL(ctx, userProjectQuery, variables, &userResp); err == nil {
		if userResp.User != nil && userResp.User.ProjectV2 != nil {
			return userResp.User.ProjectV2.ID, nil
		}
	}

	var orgResp struct {
		Organization *struct {
			ProjectV2 *struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"organization"`
	}
	if err := s.doGraphQL(ctx, orgProjectQuery, variables, &orgResp); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrProjectNotFound, err)
	}
	if orgResp.Organization == nil || orgResp.Organization.ProjectV2 == nil {
		return "", fmt.Errorf("%w: no project %d for owner %s", shared.ErrProjectNotFound, s.projectNumber, s.owner)
	}

	return orgResp.Organization.ProjectV2.ID, nil
}

// FieldIDs resolves the project's field ID map, memoizing on first success.
//
// Each field contributes a name -> id entry; single-select fields also
// contribute one "Field:Option" -> optionID entry per declared option, so
// the writer can look up both a field and a selectable value without a
// second round trip.
func (s *GitHubService) FieldIDs(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fieldIDs != nil {
		return s.fieldIDs, nil
	}

	projectID, err := s.projectIDLocked(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Node *struct {
			Fields struct {
				Nodes []struct {
					ID      string `json:"id"`
					Name    string `json:"name"`
					Options []struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"options"`
				} `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	if err := s.doGraphQL(ctx, projectFieldsQuery, map[string]any{"projectId": projectID}, &resp); err != nil {
		return nil, err
	}
	if resp.Node == nil {
		return nil, fmt.Errorf("%w: project node %s not found", shared.ErrFieldNotFound, projectID)
	}

	fieldIDs := make(map[string]string)
	for _, field := range resp.Node.Fields.Nodes {
		if field.Name == "" {
			continue
		}
		fieldIDs[field.Name] = field.ID
		for _, option := range field.Options {
			fieldIDs[field.Name+":"+option.Name] = option.ID
		}
	}

	s.fieldIDs = fieldIDs
	return fieldIDs, nil
}

// ImportTask creates a draft item for the record and applies its field
// values in a fixed order. Item creation failure is fatal for the record;
// every later step is best-effort and independent, so a record can land
// partially populated while still reporting success.
func (s *GitHubService) ImportTask(ctx context.Context, task models.TaskRecord) (*ImportResult, error) {
	itemID, err := s.createDraftItem(ctx, task.Title)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{ItemID: itemID}

	steps := []struct {
		name string
		run  func(context.Context) (bool, error)
	}{
		{"set_body", func(ctx context.Context) (bool, error) {
			return s.setBody(ctx, itemID, task)
		}},
		{"set_status", func(ctx context.Context) (bool, error) {
			if task.Status == "" {
				return true, nil
			}
			return s.updateItemField(ctx, itemID, s.fields.Status, task.Status)
		}},
		{"set_due_date", func(ctx context.Context) (bool, error) {
			if task.DueDate == "" {
				return true, nil
			}
			return s.updateItemField(ctx, itemID, s.fields.DueDate, task.DueDate)
		}},
		{"set_assignees", func(ctx context.Context) (bool, error) {
			if len(task.Assignees) == 0 {
				return true, nil
			}
			return s.updateItemField(ctx, itemID, s.fields.Assignees, strings.Join(task.Assignees, ", "))
		}},
		{"set_labels", func(ctx context.Context) (bool, error) {
			if len(task.Tags) == 0 {
				return true, nil
			}
			return s.updateItemField(ctx, itemID, s.fields.Labels, strings.Join(task.Tags, ", "))
		}},
	}

	for _, step := range steps {
		skipped, err := step.run(ctx)
		if err != nil {
			s.logger.Warn("field update failed", "step", step.name, "item", itemID, "error", err)
		}
		result.Steps = append(result.Steps, ImportStep{Name: step.name, Skipped: skipped, Err: err})
	}

	return result, nil
}

// createDraftItem adds a draft item carrying only the title.
func (s *GitHubService) createDraftItem(ctx context.Context, title string) (string, error) {
	s.mu.Lock()
	projectID, err := s.projectIDLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	var resp struct {
		AddProjectV2DraftItem struct {
			ProjectItem struct {
				ID string `json:"id"`
			} `json:"projectItem"`
		} `json:"addProjectV2DraftItem"`
	}
	variables := map[string]any{
		"projectId": projectID,
		"title":     title,
	}
	if err := s.doGraphQL(ctx, createDraftItemMutation, variables, &resp); err != nil {
		return "", fmt.Errorf("failed to create draft item: %w", err)
	}

	return resp.AddProjectV2DraftItem.ProjectItem.ID, nil
}

// setBody composes the item body from the description and the source
// attribution line. The update is attempted only when the body is non-empty.
func (s *GitHubService) setBody(ctx context.Context, itemID string, task models.TaskRecord) (bool, error) {
	body := task.Description
	if task.SourceURL != "" {
		body += fmt.Sprintf("\n\n*From Notion: %s*", task.SourceURL)
	}
	if body == "" {
		return true, nil
	}

	s.mu.Lock()
	projectID, err := s.projectIDLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	variables := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   noteFieldID,
		"body":      body,
	}
	if err := s.doGraphQL(ctx, updateItemBodyMutation, variables, nil); err != nil {
		return false, fmt.Errorf("failed to update body: %w", err)
	}
	return false, nil
}

// updateItemField writes one field value, selecting the mutation shape from
// the field's configured kind. A missing field or option mapping skips the
// step with a warning instead of failing it.
func (s *GitHubService) updateItemField(ctx context.Context, itemID, fieldName, value string) (bool, error) {
	fieldIDs, err := s.FieldIDs(ctx)
	if err != nil {
		return false, err
	}

	fieldID, ok := fieldIDs[fieldName]
	if !ok {
		s.logger.Warn("field not found in project", "field", fieldName)
		return true, nil
	}

	s.mu.Lock()
	projectID, err := s.projectIDLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	var query string
	variables := map[string]any{
		"projectId": projectID,
		"itemId":    itemID,
		"fieldId":   fieldID,
	}

	switch s.kinds.Kind(fieldName) {
	case models.FieldKindSingleSelect:
		optionKey := fieldName + ":" + value
		optionID, ok := fieldIDs[optionKey]
		if !ok {
			s.logger.Warn("option not found for field", "field", fieldName, "option", value)
			return true, nil
		}
		query = updateSelectFieldMutation
		variables["optionId"] = optionID

	case models.FieldKindDate:
		query = updateDateFieldMutation
		variables["dateValue"] = value

	default:
		query = updateTextFieldMutation
		variables["textValue"] = value
	}

	if err := s.doGraphQL(ctx, query, variables, nil); err != nil {
		return false, fmt.Errorf("failed to update field %s: %w", fieldName, err)
	}
	return false, nil
}
