package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskly/internal/core/config"
)

type ConfigValidateCmd struct {
	flags *Flags
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "taskly config validate",
				Description: "Re-reads the configuration file and reports any validation errors.",
				Action:      cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "configuration is valid (backend: %s, view: %s)\n",
		cfg.Storage.Backend, cfg.View.Default)
	return nil
}
