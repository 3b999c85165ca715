package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
	"github.com/hay-kot/steward/pkg/iojson"
)

type RunCmd struct {
	flags         *Flags
	app           *steward.App
	maxIterations int
	format        string
}

// NewRunCmd creates a new run command.
func NewRunCmd(flags *Flags, app *steward.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Process intake until no work remains",
		UsageText: "steward run [instruction] [options]",
		Description: `Run classifies every record in intake/, writes a plan for it, and routes
it to done/ or pending-approval/. Each iteration ends with an approval pass
that executes approved requests and closes rejected ones.

The run stops when intake is empty and no approval request is waiting, or
when the iteration budget is spent. Both exit 0. An undecided request keeps
the run from converging; once an iteration changes nothing and loop.interval
is zero the run stops early instead of spending the rest of the budget.
Decide requests with 'steward review', then run again.

The optional instruction is recorded in the log and has no other effect.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "max-iterations",
				Aliases:     []string{"n"},
				Usage:       "maximum number of iterations (defaults to loop.max_iterations)",
				Destination: &cmd.maxIterations,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	limit := cmd.flags.Config.Loop.MaxIterations
	if c.IsSet("max-iterations") {
		limit = cmd.maxIterations
	}
	if limit < 1 {
		return fmt.Errorf("--max-iterations must be at least 1")
	}

	instruction := strings.Join(c.Args().Slice(), " ")
	log.Info().Str("instruction", instruction).Int("max_iterations", limit).Msg("run started")

	format, err := iojson.ParseFormat(cmd.format)
	if err != nil {
		return err
	}
	jsonOut := format == iojson.FormatJSON
	observe := func(ev steward.Event) {
		if jsonOut {
			_ = iojson.WriteLine(c.Root().Writer, ev)
			return
		}
		printEvent(p, ev)
	}

	if !jsonOut && instruction != "" {
		p.Infof("%s", instruction)
	}

	report, err := cmd.app.Controller.Run(ctx, limit, observe)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.Warnf("Interrupted, remaining intake is picked up by the next run")
			return cli.Exit("", 130)
		}
		return fmt.Errorf("run: %w", err)
	}

	log.Info().
		Str("phase", string(report.Phase)).
		Int("iterations", report.Iterations).
		Int("processed", report.Processed).
		Msg("run finished")

	if jsonOut {
		report.Events = nil
		return iojson.WriteWith(c.Root().Writer, os.Stderr, report)
	}

	printReport(p, report)
	return nil
}
