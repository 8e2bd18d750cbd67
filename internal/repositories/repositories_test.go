package repositories

import (
	"database/sql"
	"testing"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/shared"
	"github.com/tmori/ngx/internal/tasks"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db, nil); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("db-123", "octocat", 7, false)
		run.SetCounts(10, 8, 2, 0)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() == 0 {
			t.Error("run sequence should be set after creation")
		}
	})

	t.Run("Create rejects invalid run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("", "octocat", 7, false)

		if err := repo.Create(run); err == nil {
			t.Error("expected validation error for missing database ID")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("db-123", "octocat", 7, true)
		run.SetCounts(3, 3, 0, 0)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if got.DatabaseID() != "db-123" || got.ProjectOwner() != "octocat" || got.ProjectNumber() != 7 {
			t.Errorf("run coordinates mismatch: %s %s %d",
				got.DatabaseID(), got.ProjectOwner(), got.ProjectNumber())
		}
		if !got.DryRun() {
			t.Error("dry run flag lost")
		}
		if got.Total() != 3 || got.Success() != 3 {
			t.Errorf("run counts mismatch: total=%d success=%d", got.Total(), got.Success())
		}
	})

	t.Run("Get missing run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get("nope"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("db-123", "octocat", 7, false)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetCounts(5, 4, 1, 0)
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Failed() != 1 {
			t.Errorf("updated counts not persisted, failed=%d", got.Failed())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("db-123", "octocat", 7, false)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}

		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("soft-deleted run should not be retrievable")
		}
		if err := repo.Delete(run.ID()); err == nil {
			t.Error("double delete should fail")
		}
	})

	t.Run("List ordering and limit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for i := 0; i < 3; i++ {
			run := models.NewRun("db-123", "octocat", 7, false)
			run.SetCounts(i, i, 0, 0)
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].Sequence() < runs[1].Sequence() {
			t.Error("runs should be ordered newest first")
		}

		limited, err := repo.List(map[string]any{"limit": 2})
		if err != nil {
			t.Fatalf("failed to list runs with limit: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs with limit, got %d", len(limited))
		}
	})

	t.Run("List filters by database", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, dbID := range []string{"db-a", "db-b", "db-a"} {
			if err := repo.Create(models.NewRun(dbID, "octocat", 7, false)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.List(map[string]any{"database_id": "db-a"})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs for db-a, got %d", len(runs))
		}
	})
}

func TestRunFailureRepository(t *testing.T) {
	t.Run("Create and ListByRun", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		runs := NewRunRepository(db)
		run := models.NewRun("db-123", "octocat", 7, false)
		if err := runs.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		repo := NewRunFailureRepository(db)
		failure := models.NewRunFailure(run.ID(), "p2", "Second", "draft item rejected")
		if err := repo.Create(failure); err != nil {
			t.Fatalf("failed to create run failure: %v", err)
		}

		failures, err := repo.ListByRun(run.ID())
		if err != nil {
			t.Fatalf("failed to list run failures: %v", err)
		}
		if len(failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(failures))
		}
		if failures[0].SourceID() != "p2" || failures[0].Error() != "draft item rejected" {
			t.Errorf("failure fields mismatch: %s %s", failures[0].SourceID(), failures[0].Error())
		}
	})

	t.Run("Create rejects detached failure", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunFailureRepository(db)
		failure := models.NewRunFailure("", "p1", "First", "boom")

		if err := repo.Create(failure); err == nil {
			t.Error("expected validation error for missing run ID")
		}
	})
}

func TestLedger(t *testing.T) {
	t.Run("RecordRun persists run and failures", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		ledger := NewLedger(db, "db-123", "octocat", 7)
		result := &tasks.MigrationResult{
			Total:   3,
			Success: 2,
			Failed:  1,
			Failures: []tasks.MigrationFailure{
				{SourceID: "p2", Title: "Second", Error: "draft item rejected"},
			},
		}

		if err := ledger.RecordRun(result); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}

		runs, err := ledger.Runs(0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].Total() != 3 || runs[0].Success() != 2 || runs[0].Failed() != 1 {
			t.Errorf("run counts mismatch: %+v", runs[0])
		}

		failures, err := ledger.Failures(runs[0].ID())
		if err != nil {
			t.Fatalf("failed to list failures: %v", err)
		}
		if len(failures) != 1 || failures[0].Title() != "Second" {
			t.Errorf("failures mismatch: %+v", failures)
		}
	})

	t.Run("Runs respects limit", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		ledger := NewLedger(db, "db-123", "octocat", 7)
		for i := 0; i < 3; i++ {
			if err := ledger.RecordRun(&tasks.MigrationResult{Total: i}); err != nil {
				t.Fatalf("RecordRun failed: %v", err)
			}
		}

		runs, err := ledger.Runs(2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})
}
