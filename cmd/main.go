package main

import (
	"context"
	"errors"
	"os"

	"github.com/tmori/ngx/internal/services"
	"github.com/tmori/ngx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var notionService services.TaskSource
	var githubService services.ProjectWriter

	if svc, err := services.NewNotionService(config.Notion, config.Mappings, logger); err == nil {
		notionService = svc
	}
	if svc, err := services.NewGitHubService(config.GitHub, config.Fields, logger); err == nil {
		githubService = svc
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Notion: notionService,
		GitHub: githubService,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "ngx",
		Usage:    "Migrate Notion database tasks to GitHub Projects",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if exitErr.Error() != "" {
				logger.Error(exitErr.Error())
			}
			os.Exit(exitErr.ExitCode())
		}
		logger.Fatalf("application error: %v", err)
	}
}
