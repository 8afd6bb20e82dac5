// Package app provides the application initialization and lifecycle management
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tildaslashalef/nestlint/internal/config"
	"github.com/tildaslashalef/nestlint/internal/git"
	"github.com/tildaslashalef/nestlint/internal/github"
	"github.com/tildaslashalef/nestlint/internal/lint"
	"github.com/tildaslashalef/nestlint/internal/loggy"
	"github.com/tildaslashalef/nestlint/internal/report"
	"github.com/urfave/cli/v2"
)

// App represents the application instance with its dependencies
type App struct {
	Config   *config.Config
	Git      *git.Service
	Invoker  *lint.Invoker
	Runner   *lint.Runner
	Reporter report.Reporter
	GitHub   *github.Service
	logger   *loggy.Logger
}

// Options overrides configuration loaded from the environment
type Options struct {
	ConfigDir   string
	EnvFile     string
	Format      string
	FailOnError bool
	Dir         string    // Directory the repository is discovered from, defaults to cwd
	Out         io.Writer // Report destination, defaults to stdout
}

// New initializes a new application instance with all its dependencies
func New(opts Options) (*App, error) {
	cfg, err := initConfig(opts)
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Debug("Application initializing",
		"version", os.Getenv("VERSION"),
		"log_level", cfg.Logging.Level,
		"format", cfg.Output.Format,
	)

	return NewWithConfig(cfg, loggy.GetGlobalLogger(), opts)
}

// NewWithConfig builds the services for an already loaded configuration
func NewWithConfig(cfg *config.Config, logger *loggy.Logger, opts Options) (*App, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	dir := opts.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = cwd
	}

	gitService := git.NewService(logger)
	if gitService.HasGitRepo(dir) {
		if err := gitService.InitRepo(dir); err != nil {
			return nil, fmt.Errorf("failed to open repository: %w", err)
		}
	}

	invoker := lint.NewInvoker(lint.InvokerOptions{
		Executable:   cfg.Linter.Executable,
		ExtraOptions: cfg.Linter.ExtraOptions,
		Timeout:      cfg.Linter.Timeout,
	}, logger)

	runner := lint.NewRunner(invoker, gitService, logger,
		lint.WithFilter(lint.Filter{SkipVendored: cfg.Linter.SkipVendored}),
		lint.WithDir(dir),
	)

	app := &App{
		Config:  cfg,
		Git:     gitService,
		Invoker: invoker,
		Runner:  runner,
		logger:  logger,
	}

	var commenter report.Commenter
	if cfg.Output.Format == config.FormatGitHub {
		githubService, err := app.initGitHub()
		if err != nil {
			return nil, err
		}
		app.GitHub = githubService
		commenter = githubService
	}

	reporter, err := report.New(report.Options{
		Format:    cfg.Output.Format,
		Color:     cfg.Output.Color,
		Writer:    out,
		Commenter: commenter,
	})
	if err != nil {
		return nil, err
	}
	app.Reporter = reporter

	return app, nil
}

// initConfig loads and sets up the application configuration
func initConfig(opts Options) (*config.Config, error) {
	cfg, err := config.LoadFromEnv(opts.ConfigDir, opts.EnvFile)
	if cfg == nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over the environment, so validate once they are applied
	if opts.Format != "" {
		cfg.Output.Format = opts.Format
	}
	if opts.FailOnError {
		cfg.Output.FailOnError = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initGitHub creates the pull request commenter, filling in owner/repo from the origin remote
func (app *App) initGitHub() (*github.Service, error) {
	cfg := app.Config
	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		url, err := app.Git.RemoteURL("origin")
		if err != nil {
			return nil, fmt.Errorf("GitHub owner/repo not configured and origin remote unavailable: %w", err)
		}
		owner, repo, err := github.ExtractRepoDetailsFromURL(url)
		if err != nil {
			return nil, err
		}
		cfg.GitHub.Owner = owner
		cfg.GitHub.Repo = repo
		app.logger.Debug("Using repository details from origin remote", "owner", owner, "repo", repo)
	}

	return github.NewService(cfg, app.logger)
}

// Lint collects the change set described by req and lints it
func (app *App) Lint(ctx context.Context, req git.DiffRequest) (report.Result, error) {
	runID := loggy.GetRequestID(ctx)
	if runID == "" {
		runID = loggy.NewRequestID()
		ctx = loggy.WithRequestID(ctx, runID)
	}

	patches, err := app.Git.GetPatches(req)
	if err != nil {
		return report.Result{RunID: runID}, fmt.Errorf("failed to collect changes: %w", err)
	}

	app.logger.Debug("Collected change set", "run_id", runID, "diff_type", req.DiffType, "patches", len(patches))

	messages, err := app.Runner.Run(ctx, git.AsLintPatches(patches))
	if err != nil {
		return report.Result{RunID: runID}, err
	}

	return report.Result{RunID: runID, Messages: messages}, nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	app.logger.Debug("Shutting down application")
	return loggy.GetGlobalLogger().Close()
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
