package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/nestlint/internal/commands"
)

// Version information - populated at build time
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
	Author     = "unknown"
	Email      = "unknown"
)

func main() {
	cliApp := &cli.App{
		Name:  "nestlint",
		Usage: "cpplint for the lines you changed",
		Description: "nestlint runs cpplint on the C/C++ files touched by a change set and reports only\n" +
			"the complaints that land on added lines.\n\n" +
			"When run without subcommands, nestlint lints staged changes (default action).",
		Version: Version + " (" + CommitHash + ")",
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Authors: []*cli.Author{
			{
				Name:  Author,
				Email: Email,
			},
		},
		Flags:  commands.GlobalFlags(),
		Before: commands.Before,
		After:  commands.After,
		Commands: []*cli.Command{
			commands.RunCommand(),
			commands.InitCommand(),
			commands.CheckCommand(),
		},
		Action: func(c *cli.Context) error {
			// Default action is to lint staged changes
			return commands.RunCommand().Action(c)
		},
	}

	// Interrupts cancel the running linter
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}
