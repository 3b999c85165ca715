package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
)

type WatchCmd struct {
	flags    *Flags
	app      *steward.App
	interval time.Duration
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags, app *steward.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Ingest dropped files and run continuously",
		UsageText: "steward watch [options]",
		Description: `Watch ingests files dropped into the inbox directory as file_drop
records and runs the controller whenever new work arrives and on a fixed
interval, so decisions made in pending-approval/ are picked up.

Stop with Ctrl+C.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "interval",
				Usage:       "time between scheduled runs (defaults to loop.watch_interval)",
				Destination: &cmd.interval,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if c.IsSet("interval") {
		if cmd.interval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}
		cmd.flags.Config.Loop.WatchInterval = cmd.interval
	}

	intake, err := cmd.app.Intake(ctx, "inbox")
	if err != nil {
		return err
	}

	w := cmd.app.Watcher(intake)
	p.Infof("Watching %s (runs every %s)", cmd.flags.Config.InboxPath(), cmd.flags.Config.Loop.WatchInterval)
	log.Info().Str("inbox", cmd.flags.Config.InboxPath()).Msg("watch started")

	err = w.Run(ctx,
		func(ev steward.Event) { printEvent(p, ev) },
		func(r steward.Report) { printReport(p, r) },
	)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	p.Printf("")
	p.Infof("Stopped")
	return nil
}
