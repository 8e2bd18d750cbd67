package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationFile matches versioned migration filenames such as
// "0000_create_tables_up.sql".
var migrationFile = regexp.MustCompile(`^(\d+)_(.+)_(up|down)\.sql$`)

// Migration pairs the up and down SQL for one ledger schema version.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// loadMigrations reads the embedded sql directory and returns the ledger
// schema migrations sorted by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("%w: reading embedded migrations: %v", ErrMigrationFailed, err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		match := migrationFile.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, _ := strconv.Atoi(match[1])

		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrMigrationFailed, entry.Name(), err)
		}

		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version, Name: match[2]}
			byVersion[version] = m
		}
		if match[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("%w: version %d is missing its up or down file", ErrMigrationFailed, m.Version)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// RunMigrations applies every pending ledger schema migration, recording each
// applied version in schema_migrations. A nil logger discards progress lines.
func RunMigrations(db *sql.DB, logger *log.Logger) error {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("%w: creating schema_migrations: %v", ErrMigrationFailed, err)
	}

	for _, migration := range migrations {
		var applied bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", migration.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("%w: checking version %d: %v", ErrMigrationFailed, migration.Version, err)
		}
		if applied {
			continue
		}

		if err := execMigration(db, migration.Up, "INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("%w: applying %04d_%s: %v", ErrMigrationFailed, migration.Version, migration.Name, err)
		}
		logger.Info("applied ledger migration", "version", migration.Version, "name", migration.Name)
	}

	return nil
}

// RollbackMigration undoes the most recently applied ledger migration.
func RollbackMigration(db *sql.DB, logger *log.Logger) error {
	if logger == nil {
		logger = NewLogger(io.Discard)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_migrations").Scan(&version)
	if err != nil {
		return fmt.Errorf("%w: reading current version: %v", ErrMigrationFailed, err)
	}
	if version < 0 {
		return fmt.Errorf("%w: nothing to roll back", ErrMigrationFailed)
	}

	for _, migration := range migrations {
		if migration.Version != version {
			continue
		}
		if err := execMigration(db, migration.Down, "DELETE FROM schema_migrations WHERE version = ?", migration.Version); err != nil {
			return fmt.Errorf("%w: rolling back %04d_%s: %v", ErrMigrationFailed, migration.Version, migration.Name, err)
		}
		logger.Info("rolled back ledger migration", "version", migration.Version, "name", migration.Name)
		return nil
	}

	return fmt.Errorf("%w: version %d has no embedded migration", ErrMigrationFailed, version)
}

// createMigrationsTable creates the schema_migrations bookkeeping table.
func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// execMigration runs one migration script plus its bookkeeping statement in a
// single transaction.
func execMigration(db *sql.DB, script, record string, version int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt, err)
		}
	}

	if _, err := tx.Exec(record, version); err != nil {
		return err
	}

	return tx.Commit()
}

// splitStatements breaks a migration script into executable statements,
// dropping "--" comments and blank lines. The sqlite driver executes one
// statement per Exec call.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if idx := strings.Index(line, "--"); idx >= 0 {
				line = line[:idx]
			}
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
