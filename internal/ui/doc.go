// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for task migration:
//  1. [TaskListView] : Browse the tasks fetched from the Notion database
//  2. [ConfirmView] : Confirm the migration operation
//  3. [MigrateView] : Monitor real-time progress updates
//  4. [ResultView] : Display success counts and per-record failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the MigrationEngine, providing non-blocking status reporting during migrations.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
