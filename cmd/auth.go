package main

import (
	"context"

	"github.com/desertthunder/insights/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the Spotify consent URL built from the configured credentials.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	spotify, err := r.spotify(config)
	if err != nil {
		return err
	}

	authURL := spotify.AuthURL(shared.GenerateID())
	if err := r.writePlain("%s\n", authURL); err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "err", err)
		}
	}

	return nil
}
