// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the relay proxy
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the relay proxy that forwards state to the Particle cloud",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// statusCommand reports relay configuration
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show whether the relay has its Particle credentials",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// syncCommand resends stored profiles
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Resend the stored profiles to the device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "emotion",
				Aliases: []string{"e"},
				Usage:   "Only sync this profile (positive or negative)",
			},
		},
		Action: r.Sync,
	}
}

// saveCommand commits device state to flash
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "save",
		Usage:  "Save the device's current state to flash",
		Action: r.Save,
	}
}

// stateCommand reads and edits the persisted profiles
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect or edit the stored emotion profiles",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print both profiles",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, json, csv or markdown",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.StateShow,
			},
			{
				Name:  "set",
				Usage: "Edit one profile, save it and sync it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "emotion",
						Aliases:  []string{"e"},
						Usage:    "Profile to edit (positive or negative)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "hue",
						Usage: "Hue angle (wrapped into 0-359)",
					},
					&cli.StringFlag{
						Name:  "scheme",
						Usage: "Named color scheme",
					},
					&cli.StringFlag{
						Name:    "track",
						Aliases: []string{"t"},
						Usage:   "Track id",
					},
					&cli.BoolFlag{
						Name:  "clear-track",
						Usage: "Remove the selected track",
					},
					&cli.IntFlag{
						Name:    "motor",
						Aliases: []string{"m"},
						Usage:   "Motor speed (clamped into 0-100)",
					},
					&cli.BoolFlag{
						Name:  "no-sync",
						Usage: "Only save locally",
					},
				},
				Action: r.StateSet,
			},
		},
	}
}

// tuiCommand launches the dashboard
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive dashboard",
		Action: r.TUI,
	}
}
