package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/tmori/ngx/internal/models"
	"github.com/tmori/ngx/internal/services"
	"github.com/tmori/ngx/internal/shared"
	tu "github.com/tmori/ngx/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	// Stop cli.HandleExitCoder from terminating the test binary when a
	// command action returns an ExitCoder; tests assert on the returned error.
	cli.OsExiter = func(int) {}
	os.Exit(m.Run())
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			notion := &tu.MockSource{}
			github := &tu.MockProject{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Notion: notion,
				GitHub: github,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.notion != notion {
				t.Error("expected notion to be set")
			}
			if runner.github != github {
				t.Error("expected github to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !strings.Contains(output.String(), `{"key":"value"}`) {
				t.Errorf("expected compact JSON, got %s", output.String())
			}
		})

		t.Run("returns error on failed write", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestNotionCommands(t *testing.T) {
	ctx := context.Background()

	newCmd := func(flags []cli.Flag, action cli.ActionFunc) *cli.Command {
		return &cli.Command{Name: "test", Flags: flags, Action: action}
	}

	t.Run("NotionTasks lists records", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			TasksFunc: func(ctx context.Context) ([]models.TaskRecord, error) {
				return []models.TaskRecord{
					{SourceID: "p1", Title: "Write docs", Status: "In Progress", DueDate: "2025-06-01"},
					{SourceID: "p2", Title: "Fix bug"},
				}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion})

		cmd := newCmd([]cli.Flag{
			&cli.IntFlag{Name: "limit"},
			&cli.BoolFlag{Name: "json"},
			&cli.BoolFlag{Name: "pretty"},
		}, runner.NotionTasks)

		if err := cmd.Run(ctx, []string{"test"}); err != nil {
			t.Fatalf("NotionTasks failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Write docs") || !strings.Contains(out, "Fix bug") {
			t.Errorf("output missing tasks: %s", out)
		}
		if !strings.Contains(out, "[In Progress]") {
			t.Errorf("output missing status: %s", out)
		}
	})

	t.Run("NotionTasks respects limit", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			TasksFunc: func(ctx context.Context) ([]models.TaskRecord, error) {
				return []models.TaskRecord{
					{SourceID: "p1", Title: "One"},
					{SourceID: "p2", Title: "Two"},
				}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion})

		cmd := newCmd([]cli.Flag{
			&cli.IntFlag{Name: "limit"},
			&cli.BoolFlag{Name: "json"},
			&cli.BoolFlag{Name: "pretty"},
		}, runner.NotionTasks)

		if err := cmd.Run(ctx, []string{"test", "--limit", "1"}); err != nil {
			t.Fatalf("NotionTasks failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "One") || strings.Contains(out, "Two") {
			t.Errorf("limit not applied: %s", out)
		}
	})

	t.Run("NotionTasks without service", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		cmd := newCmd([]cli.Flag{
			&cli.IntFlag{Name: "limit"},
			&cli.BoolFlag{Name: "json"},
			&cli.BoolFlag{Name: "pretty"},
		}, runner.NotionTasks)

		err := cmd.Run(ctx, []string{"test"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("NotionSchema renders property types", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			SchemaFunc: func(ctx context.Context) (map[string]services.SchemaProperty, error) {
				return map[string]services.SchemaProperty{
					"Name":   {ID: "title", Type: "title"},
					"Status": {ID: "st", Type: "status"},
				}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion})

		cmd := newCmd([]cli.Flag{
			&cli.BoolFlag{Name: "pretty", Value: true},
		}, runner.NotionSchema)

		if err := cmd.Run(ctx, []string{"test"}); err != nil {
			t.Fatalf("NotionSchema failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Name") || !strings.Contains(out, "status") {
			t.Errorf("output missing schema entries: %s", out)
		}
	})
}

func TestGitHubCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("GitHubProject prints node ID", func(t *testing.T) {
		output := &bytes.Buffer{}
		github := &tu.MockProject{
			ProjectIDFunc: func(ctx context.Context) (string, error) {
				return "PVT_abc123", nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, GitHub: github})

		cmd := &cli.Command{Name: "test", Action: runner.GitHubProject}
		if err := cmd.Run(ctx, []string{"test"}); err != nil {
			t.Fatalf("GitHubProject failed: %v", err)
		}

		if !strings.Contains(output.String(), "PVT_abc123") {
			t.Errorf("output missing project node ID: %s", output.String())
		}
	})

	t.Run("GitHubFields groups fields and options", func(t *testing.T) {
		output := &bytes.Buffer{}
		github := &tu.MockProject{
			FieldIDsFunc: func(ctx context.Context) (map[string]string, error) {
				return map[string]string{
					"Status":             "F1",
					"Status:In Progress": "X1",
				}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, GitHub: github})

		cmd := &cli.Command{
			Name: "test",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json"},
				&cli.BoolFlag{Name: "pretty"},
			},
			Action: runner.GitHubFields,
		}
		if err := cmd.Run(ctx, []string{"test"}); err != nil {
			t.Fatalf("GitHubFields failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Status:In Progress") || !strings.Contains(out, "X1") {
			t.Errorf("output missing option entry: %s", out)
		}
	})

	t.Run("GitHubProject without service", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		cmd := &cli.Command{Name: "test", Action: runner.GitHubProject}
		err := cmd.Run(ctx, []string{"test"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestMigrateCommand(t *testing.T) {
	ctx := context.Background()

	migrateFlags := []cli.Flag{
		&cli.BoolFlag{Name: "dry-run"},
		&cli.BoolFlag{Name: "no-ledger"},
		&cli.StringFlag{Name: "config"},
		&cli.StringFlag{Name: "database-id"},
		&cli.IntFlag{Name: "project-number"},
	}

	t.Run("successful migration prints summary", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			TasksFunc: func(ctx context.Context) ([]models.TaskRecord, error) {
				return []models.TaskRecord{{SourceID: "p1", Title: "Only task"}}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion, GitHub: &tu.MockProject{}})

		cmd := &cli.Command{Name: "migrate", Flags: migrateFlags, Action: runner.MigrateRun}
		if err := cmd.Run(ctx, []string{"migrate", "--no-ledger"}); err != nil {
			t.Fatalf("MigrateRun failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Migration Complete!") {
			t.Errorf("output missing completion banner: %s", out)
		}
		if !strings.Contains(out, "Imported: 1") {
			t.Errorf("output missing success count: %s", out)
		}
	})

	t.Run("failed records exit non-zero", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			TasksFunc: func(ctx context.Context) ([]models.TaskRecord, error) {
				return []models.TaskRecord{{SourceID: "p1", Title: "Doomed"}}, nil
			},
		}
		github := &tu.MockProject{
			ImportTaskFunc: func(ctx context.Context, task models.TaskRecord) (*services.ImportResult, error) {
				return nil, errors.New("creation failed")
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion, GitHub: github})

		cmd := &cli.Command{Name: "migrate", Flags: migrateFlags, Action: runner.MigrateRun}
		err := cmd.Run(ctx, []string{"migrate", "--no-ledger"})

		var exitErr cli.ExitCoder
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			t.Errorf("expected exit code 1, got %v", err)
		}
		if !strings.Contains(output.String(), "Doomed") {
			t.Errorf("output missing failed task: %s", output.String())
		}
	})

	t.Run("dry run lists tasks without importing", func(t *testing.T) {
		output := &bytes.Buffer{}
		notion := &tu.MockSource{
			TasksFunc: func(ctx context.Context) ([]models.TaskRecord, error) {
				return []models.TaskRecord{{SourceID: "p1", Title: "Preview me"}}, nil
			},
		}
		imported := 0
		github := &tu.MockProject{
			ImportTaskFunc: func(ctx context.Context, task models.TaskRecord) (*services.ImportResult, error) {
				imported++
				return &services.ImportResult{}, nil
			},
		}
		runner := NewRunner(RunnerOpts{Output: output, Notion: notion, GitHub: github})

		cmd := &cli.Command{Name: "migrate", Flags: migrateFlags, Action: runner.MigrateRun}
		if err := cmd.Run(ctx, []string{"migrate", "--dry-run", "--no-ledger"}); err != nil {
			t.Fatalf("MigrateRun failed: %v", err)
		}

		if imported != 0 {
			t.Errorf("dry run should not import, imported %d", imported)
		}
		if !strings.Contains(output.String(), "Preview me") {
			t.Errorf("output missing previewed task: %s", output.String())
		}
	})

	t.Run("override flags require credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Notion: &tu.MockSource{}, GitHub: &tu.MockProject{}})

		cmd := &cli.Command{Name: "migrate", Flags: migrateFlags, Action: runner.MigrateRun}
		err := cmd.Run(ctx, []string{"migrate", "--no-ledger", "--database-id", "db-override"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
