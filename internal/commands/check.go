package commands

import (
	"fmt"

	"github.com/tildaslashalef/nestlint/internal/app"
	"github.com/tildaslashalef/nestlint/internal/utils"
	"github.com/urfave/cli/v2"
)

// CheckCommand returns the CLI command that verifies the environment before a run
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Verify that cpplint is installed and a repository is available",
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	utils.PrintHeading(w, "nestlint check")

	failed := false

	path, err := application.Invoker.CheckExecutable()
	if err != nil {
		utils.PrintError(w, err.Error())
		failed = true
	} else {
		utils.PrintSuccess(w, "Linter found")
		utils.PrintKeyValue(w, "Executable", path)
	}

	if root := application.Git.Root(); root != "" {
		utils.PrintSuccess(w, "Git repository found")
		utils.PrintKeyValue(w, "Working tree", root)
	} else {
		utils.PrintWarning(w, "No git repository here; run nestlint inside a git working tree")
	}

	cfg := application.Config
	utils.PrintKeyValue(w, "Configuration", cfg.ConfigDir())
	utils.PrintKeyValue(w, "Output format", cfg.Output.Format)
	if cfg.Linter.ExtraOptions != "" {
		utils.PrintKeyValue(w, "Extra options", cfg.Linter.ExtraOptions)
	}

	if failed {
		return fmt.Errorf("environment check failed")
	}
	return nil
}
