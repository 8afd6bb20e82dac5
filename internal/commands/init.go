package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/tildaslashalef/nestlint/internal/config"
	"github.com/tildaslashalef/nestlint/internal/utils"
	"github.com/urfave/cli/v2"
)

// InitCommand returns the CLI command for initializing the configuration directory
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a sample configuration file",
		Description: "Creates the configuration directory (~/.nestlint by default) and writes a " +
			"commented .env file. An existing file is kept unless --force is given, in which " +
			"case it is backed up first.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing .env after backing it up",
			},
		},
		Action: initAction,
	}
}

func initAction(c *cli.Context) error {
	w := c.App.Writer
	utils.PrintHeading(w, "Initializing nestlint")

	configDir := c.String("config-dir")
	if configDir == "" {
		dir, err := config.DefaultConfigDir()
		if err != nil {
			utils.PrintError(w, err.Error())
			return err
		}
		configDir = dir
	}
	utils.PrintInfo(w, "Configuration directory: "+color.YellowString("%s", configDir))

	envPath, err := config.SetupConfigDirectory(configDir, c.Bool("force"))
	if err != nil {
		utils.PrintError(w, fmt.Sprintf("Failed to set up configuration files: %s", err))
		return fmt.Errorf("failed to set up configuration files: %w", err)
	}

	utils.PrintSuccess(w, "nestlint initialized successfully")
	utils.PrintInfo(w, "Configuration file: "+color.YellowString("%s", envPath))
	utils.PrintInfo(w, "Run "+color.CyanString("nestlint check")+" to verify that cpplint can be found.")

	return nil
}
