package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/photon/internal/server"
	"github.com/desertthunder/photon/internal/services"
	"github.com/desertthunder/photon/internal/shared"
)

// newRelayHandler builds the relay from config, reading credentials through the runner's lookup.
func (r *Runner) newRelayHandler() (*server.RelayHandler, error) {
	colors, err := r.colors()
	if err != nil {
		return nil, err
	}
	return server.NewRelayHandler(server.RelayOptions{
		Credentials: shared.NewEnvCredentials(r.lookup),
		Device:      services.NewParticleClient(r.config.Relay.BaseURL, r.httpClient),
		Colors:      colors,
		Motor:       r.config.Relay.Motor,
		Timeout:     r.config.Relay.Timeout(),
		Logger:      shared.WithLogger(r.logger, "component", "relay"),
	})
}

// Serve runs the relay proxy until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}

	relay, err := r.newRelayHandler()
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}

	if status := shared.NewEnvCredentials(r.lookup).Status(); !status.Configured() {
		r.logger.Warn("particle credentials missing, POST requests will fail",
			"hasToken", status.HasToken, "hasDeviceId", status.HasDeviceID)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg.Addr(), server.NewRelayRouter(relay, r.logger), r.logger)
	return srv.Run(ctx)
}
