package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "ngx.db" {
			t.Errorf("expected database path ngx.db, got %s", config.Database.Path)
		}

		if config.Fields.Status != "Status" {
			t.Errorf("expected status field Status, got %s", config.Fields.Status)
		}

		if config.Fields.DueDate != "Due Date" {
			t.Errorf("expected due date field 'Due Date', got %s", config.Fields.DueDate)
		}

		if got := config.Mappings.Status.Map("In progress"); got != "In Progress" {
			t.Errorf("expected default status mapping for 'In progress', got %s", got)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[notion]
api_key = "secret_test"
database_id = "db123"

[github]
token = "ghp_test"
owner = "octocat"
project_number = 7

[mappings.status]
"Backlog" = "No Status"

[mappings.tags]
"bug" = "defect"

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Notion.APIKey != "secret_test" {
			t.Errorf("expected notion api key secret_test, got %s", config.Notion.APIKey)
		}
		if config.GitHub.Owner != "octocat" {
			t.Errorf("expected github owner octocat, got %s", config.GitHub.Owner)
		}
		if config.GitHub.ProjectNumber != 7 {
			t.Errorf("expected project number 7, got %d", config.GitHub.ProjectNumber)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		// Field names fall back to the well-known defaults when the section is omitted
		if config.Fields.Labels != "Labels" {
			t.Errorf("expected labels field default, got %s", config.Fields.Labels)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestNameMap(t *testing.T) {
	m := NameMap{
		"In progress": "In Progress",
		"管理画面":        "admin",
	}

	t.Run("mapped keys translate", func(t *testing.T) {
		if got := m.Map("In progress"); got != "In Progress" {
			t.Errorf("expected 'In Progress', got %q", got)
		}
		if got := m.Map("管理画面"); got != "admin" {
			t.Errorf("expected 'admin', got %q", got)
		}
	})

	t.Run("unmapped keys pass through unchanged", func(t *testing.T) {
		if got := m.Map("Done"); got != "Done" {
			t.Errorf("expected identity passthrough, got %q", got)
		}
	})

	t.Run("match is exact", func(t *testing.T) {
		if got := m.Map("in progress"); got != "in progress" {
			t.Errorf("expected no case folding, got %q", got)
		}
		if got := m.Map(" In progress"); got != " In progress" {
			t.Errorf("expected no trimming, got %q", got)
		}
	})

	t.Run("nil map passes everything through", func(t *testing.T) {
		var empty NameMap
		if got := empty.Map("anything"); got != "anything" {
			t.Errorf("expected passthrough on nil map, got %q", got)
		}
	})
}
