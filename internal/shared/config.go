package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Notion   NotionConfig   `toml:"notion"`
	GitHub   GitHubConfig   `toml:"github"`
	Mappings MappingsConfig `toml:"mappings"`
	Fields   FieldsConfig   `toml:"fields"`
	Database DatabaseConfig `toml:"database"`
}

// NotionConfig contains Notion API credentials and the source database.
type NotionConfig struct {
	APIKey     string `toml:"api_key"`
	DatabaseID string `toml:"database_id"`
}

// GitHubConfig contains GitHub API credentials and the target project.
type GitHubConfig struct {
	Token         string `toml:"token"`
	Owner         string `toml:"owner"`
	ProjectNumber int    `toml:"project_number"`
}

// NameMap is a source-name to destination-name lookup table.
//
// Matching is exact: no trimming, no case folding.
type NameMap map[string]string

// Map returns the mapped value for key, or key unchanged when no entry exists.
func (m NameMap) Map(key string) string {
	if mapped, ok := m[key]; ok {
		return mapped
	}
	return key
}

// MappingsConfig contains the status and tag name translation tables.
type MappingsConfig struct {
	Status NameMap `toml:"status"`
	Tags   NameMap `toml:"tags"`
}

// FieldsConfig names the GitHub Project custom fields written during import.
type FieldsConfig struct {
	Status    string `toml:"status"`
	DueDate   string `toml:"due_date"`
	Assignees string `toml:"assignees"`
	Labels    string `toml:"labels"`
	Title     string `toml:"title"`
}

// DatabaseConfig contains run ledger database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyFieldDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyFieldDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyFieldDefaults fills in the well-known GitHub Project field names when
// the config file leaves them blank.
func (c *Config) applyFieldDefaults() {
	if c.Fields.Status == "" {
		c.Fields.Status = "Status"
	}
	if c.Fields.DueDate == "" {
		c.Fields.DueDate = "Due Date"
	}
	if c.Fields.Assignees == "" {
		c.Fields.Assignees = "Assignees"
	}
	if c.Fields.Labels == "" {
		c.Fields.Labels = "Labels"
	}
	if c.Fields.Title == "" {
		c.Fields.Title = "Title"
	}
}
