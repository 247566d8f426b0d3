package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/photon/internal/formatter"
	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
	"github.com/desertthunder/photon/internal/tasks"
)

// Status prints the relay's credential diagnostics.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	client := r.relayClient()
	d, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach relay at %s: %w", client.Endpoint(), err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(d, false)
	}
	return r.writePlain("%s", formatter.FormatDiagnostics(client.Endpoint(), *d))
}

// Sync resends the stored profiles and waits for the relay's replies.
//
// Sync failures are reported but do not fail the command.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, sessionOpts{})
	if err != nil {
		return err
	}
	defer sess.close()

	var pending []*tasks.Task
	if emotion := cmd.String("emotion"); emotion != "" {
		label, err := models.ParseLabel(emotion)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		task, err := sess.store.Sync(ctx, label)
		if err != nil {
			return err
		}
		pending = append(pending, task)
	} else {
		pending = sess.store.SyncAll(ctx)
	}

	for _, task := range pending {
		r.reportTask(ctx, task)
	}
	return nil
}

// reportTask waits for task and prints its outcome.
func (r *Runner) reportTask(ctx context.Context, task *tasks.Task) {
	res, err := task.Wait(ctx)
	if err != nil {
		r.logger.Warn("gave up waiting for sync", "error", err)
		return
	}
	if res.Err != nil {
		r.logger.Warn("sync failed", "emotion", res.Label, "error", res.Err)
		r.writePlain("%s: %s\n", res.Label, formatter.FormatReply(&models.RelayReply{Error: res.Err.Error()}))
		return
	}
	if res.Stale && res.Reply == nil {
		r.writePlain("%s: superseded by a newer sync\n", res.Label)
		return
	}
	r.writePlain("%s: %s\n", res.Label, formatter.FormatReply(res.Reply))
}

// Save asks the device to commit its current state to flash.
func (r *Runner) Save(ctx context.Context, cmd *cli.Command) error {
	reply, err := r.relayClient().Save(ctx)
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return r.writePlain("%s\n", formatter.FormatReply(reply))
}

// StateShow prints both stored profiles.
func (r *Runner) StateShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	sess, err := r.openSession(ctx, sessionOpts{})
	if err != nil {
		return err
	}
	defer sess.close()

	state := sess.store.State()
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(state, sess.store.Colors(), format, path); err != nil {
			return err
		}
		r.logger.Info("state exported", "format", format, "path", path)
		return nil
	}

	data, err := formatter.Export(state, sess.store.Colors(), format)
	if err != nil {
		return err
	}
	if format == formatter.Text {
		r.writePlainHeader("Photon state")
	}
	return r.writePlain("%s\n", strings.TrimRight(string(data), "\n"))
}

// StateSet edits one profile, persists it and syncs it unless --no-sync is given.
func (r *Runner) StateSet(ctx context.Context, cmd *cli.Command) error {
	label, err := models.ParseLabel(cmd.String("emotion"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	update, err := updateFromFlags(cmd)
	if err != nil {
		return err
	}

	offline := cmd.Bool("no-sync")
	sess, err := r.openSession(ctx, sessionOpts{offline: offline})
	if err != nil {
		return err
	}
	defer sess.close()

	task, err := sess.store.Mutate(ctx, label, update, true)
	if err != nil {
		return err
	}

	p, _ := sess.store.Profile(label)
	r.writePlain("%s", formatter.FormatProfile(label, p, sess.store.Colors(), false))

	if offline {
		return nil
	}
	r.reportTask(ctx, task)
	return nil
}

func updateFromFlags(cmd *cli.Command) (models.ProfileUpdate, error) {
	var u models.ProfileUpdate
	if cmd.IsSet("hue") {
		u = merge(u, models.SetHue(int(cmd.Int("hue"))))
	}
	if cmd.IsSet("scheme") {
		id := cmd.String("scheme")
		if _, ok := models.LookupScheme(id); !ok {
			return u, fmt.Errorf("%w: unknown color scheme %q", shared.ErrInvalidArgument, id)
		}
		u = merge(u, models.SetColorScheme(id))
	}
	if cmd.IsSet("track") && cmd.Bool("clear-track") {
		return u, fmt.Errorf("%w: --track and --clear-track are exclusive", shared.ErrInvalidArgument)
	}
	if cmd.IsSet("track") {
		u = merge(u, models.SetTrack(cmd.String("track")))
	}
	if cmd.Bool("clear-track") {
		u = merge(u, models.SetTrack(""))
	}
	if cmd.IsSet("motor") {
		u = merge(u, models.SetMotorSpeed(int(cmd.Int("motor"))))
	}
	if u.Empty() {
		return u, fmt.Errorf("%w: nothing to change, pass --hue, --scheme, --track, --clear-track or --motor", shared.ErrMissingArgument)
	}
	return u, nil
}

// merge returns a with the set fields of b applied on top.
func merge(a, b models.ProfileUpdate) models.ProfileUpdate {
	if b.Hue != nil {
		a.Hue = b.Hue
	}
	if b.ColorScheme != nil {
		a.ColorScheme = b.ColorScheme
	}
	if b.SelectedTrack != nil {
		a.SelectedTrack = b.SelectedTrack
	}
	if b.MotorSpeed != nil {
		a.MotorSpeed = b.MotorSpeed
	}
	return a
}
