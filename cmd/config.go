package main

import (
	"context"

	"github.com/desertthunder/insights/internal/shared"
	"github.com/desertthunder/insights/internal/ui"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("created config file", "path", path)
	return r.writePlain("%s %s\n", ui.Styles().OK("✓ created"), path)
}

// ConfigShow prints the effective configuration with the client secret redacted.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		r.logger.Warn("configuration is incomplete", "err", err)
	}

	return r.writeJSON(config.Redacted(), true)
}
