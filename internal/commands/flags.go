package commands

import (
	"fmt"

	"github.com/tildaslashalef/nestlint/internal/app"
	"github.com/tildaslashalef/nestlint/internal/git"
	"github.com/urfave/cli/v2"
)

// GlobalFlags returns the flags shared by the default action and subcommands
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "staged",
			Aliases: []string{"s"},
			Usage:   "Lint staged changes in git repository (default when no other mode is specified)",
		},
		&cli.StringFlag{
			Name:    "commit",
			Aliases: []string{"c"},
			Usage:   "Lint lines added by a specific commit",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Target branch to lint (compares changes from base-branch to this branch)",
		},
		&cli.StringFlag{
			Name:    "base-branch",
			Aliases: []string{"bb"},
			Usage:   "Branch to compare against",
			Value:   "main",
		},
		&cli.StringFlag{
			Name:    "diff-file",
			Aliases: []string{"d"},
			Usage:   "Lint lines added by a unified diff read from a file (- for stdin)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, table, json or github (overrides NESTLINT_OUTPUT_FORMAT)",
		},
		&cli.BoolFlag{
			Name:  "fail-on-error",
			Usage: "Exit with status 1 when an error-level message is reported",
		},
		&cli.StringFlag{
			Name:  "config-dir",
			Usage: "Configuration directory (default: ~/.nestlint)",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to .env file (default: <config-dir>/.env)",
		},
	}
}

// skipsApp lists the subcommands that run without an application container
var skipsApp = map[string]bool{
	"init": true,
	"help": true,
	"h":    true,
}

// Before initializes the application and stores it in the CLI metadata
func Before(c *cli.Context) error {
	if skipsApp[c.Args().First()] {
		return nil
	}

	application, err := app.New(app.Options{
		ConfigDir:   c.String("config-dir"),
		EnvFile:     c.String("env-file"),
		Format:      c.String("format"),
		FailOnError: c.Bool("fail-on-error"),
		Out:         c.App.Writer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata["app"] = application

	return nil
}

// After shuts the application down
func After(c *cli.Context) error {
	if application, ok := c.App.Metadata["app"].(*app.App); ok {
		return application.Shutdown()
	}
	return nil
}

// diffRequest turns the review-mode flags into a DiffRequest. Staged is the default mode.
func diffRequest(commit, branch, baseBranch, diffFile string) (git.DiffRequest, error) {
	modes := 0
	for _, v := range []string{commit, branch, diffFile} {
		if v != "" {
			modes++
		}
	}
	if modes > 1 {
		return git.DiffRequest{}, fmt.Errorf("--commit, --branch and --diff-file are mutually exclusive")
	}

	switch {
	case commit != "":
		return git.DiffRequest{DiffType: git.DiffTypeCommit, CommitID: commit}, nil
	case branch != "":
		return git.DiffRequest{DiffType: git.DiffTypeBranch, BranchOne: baseBranch, BranchTwo: branch}, nil
	case diffFile != "":
		return git.DiffRequest{DiffType: git.DiffTypeUnified, DiffFile: diffFile}, nil
	default:
		return git.DiffRequest{DiffType: git.DiffTypeStaged}, nil
	}
}
