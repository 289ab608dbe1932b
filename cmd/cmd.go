// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

const version = "0.1.0"

// NewApp builds the root command.
func NewApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "insights",
		Usage:    "Spotify OAuth relay and top tracks proxy for the listening insights front-end",
		Version:  version,
		Writer:   r.output,
		Commands: r.register(),
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("INSIGHTS_CONFIG"),
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path to a dotenv file loaded before environment overrides",
			Value: ".env",
		},
	}
}

// serveCommand runs the HTTP relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP relay",
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (host:port), overrides server.host and server.port",
			},
		),
		Action: r.Serve,
	}
}

// configCommand handles configuration file operations
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the example configuration file",
				Flags:  configFlags(),
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration as JSON with secrets redacted",
				Flags:  configFlags(),
				Action: r.ConfigShow,
			},
		},
	}
}

// authCommand handles authentication helpers
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication helpers",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the Spotify login URL",
				Flags: append(configFlags(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				),
				Action: r.AuthURL,
			},
		},
	}
}
