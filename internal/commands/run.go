package commands

import (
	"fmt"

	"github.com/tildaslashalef/nestlint/internal/app"
	"github.com/tildaslashalef/nestlint/internal/loggy"
	"github.com/urfave/cli/v2"
)

// RunCommand returns the CLI command that lints the selected change set
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run cpplint on the changed files and report messages on added lines",
		Description: "Collects the change set selected by --staged, --commit, --branch or --diff-file, " +
			"runs cpplint on the C/C++ files it touches and reports only the complaints that " +
			"land on added lines.",
		Action: runAction,
	}
}

// runAction is the default action of the CLI
func runAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	req, err := diffRequest(c.String("commit"), c.String("branch"), c.String("base-branch"), c.String("diff-file"))
	if err != nil {
		return err
	}

	ctx := loggy.WithRequestID(c.Context, loggy.NewRequestID())
	result, err := application.Lint(ctx, req)
	if err != nil {
		return err
	}

	if err := application.Reporter.Report(ctx, result); err != nil {
		return fmt.Errorf("failed to report results: %w", err)
	}

	if application.Config.Output.FailOnError && result.HasErrors() {
		errors, _ := result.Counts()
		return cli.Exit(fmt.Sprintf("cpplint reported %d error-level message(s)", errors), 1)
	}

	return nil
}
