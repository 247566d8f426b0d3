package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/photon/internal/shared"
)

const (
	envFile       = ".env"
	defaultConfig = "config.toml"
	envConfigPath = "PHOTON_CONFIG"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(envFile); err != nil {
		logger.Warn("failed to load env file", "error", err)
	}

	configPath := os.Getenv(envConfigPath)
	if configPath == "" {
		configPath = defaultConfig
	}

	config, err := shared.LoadConfig(configPath)
	if errors.Is(err, shared.ErrMissingConfig) {
		config = shared.DefaultConfig()
	} else if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		config = shared.DefaultConfig()
	}

	if err := shared.SetLogLevelName(logger, config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "photon",
		Usage:    "Relay emotion state to a Particle device and edit it from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the snapshot database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the default config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfig,
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the sqlite database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Usage: "Database path (defaults to database.path)",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
