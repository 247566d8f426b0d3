package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/photon/internal/media"
	"github.com/desertthunder/photon/internal/shared"
	"github.com/desertthunder/photon/internal/tasks"
	"github.com/desertthunder/photon/internal/ui"
)

// drainTimeout bounds how long the TUI waits for in-flight syncs on exit.
const drainTimeout = 2 * time.Second

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.ExpandHome(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.SetLogLevelName(fileLogger, r.config.Log.Level); err != nil {
		fileLogger.Warn("ignoring log level", "error", err)
	}
	r.SetLogger(fileLogger)

	player := media.NewExecPlayer(r.config.Media.Dir, r.config.Media.Command, shared.WithLogger(fileLogger, "component", "media"))
	progress := make(chan tasks.ProgressUpdate, 64)

	sess, err := r.openSession(ctx, sessionOpts{player: player, progress: progress})
	if err != nil {
		return err
	}
	defer sess.close()

	model := ui.NewModel(ctx, sess.store, r.relayClient(), progress)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, runErr := p.Run()

	if err := sess.store.StopPreview(); err != nil {
		r.logger.Warn("failed to stop preview", "error", err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := sess.dispatcher.Wait(drainCtx); err != nil {
		r.logger.Warn("exiting with syncs still in flight", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	return nil
}
