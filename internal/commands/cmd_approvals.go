package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
)

type ApprovalsCmd struct {
	flags *Flags
	app   *steward.App
}

// NewApprovalsCmd creates a new approvals command.
func NewApprovalsCmd(flags *Flags, app *steward.App) *ApprovalsCmd {
	return &ApprovalsCmd{flags: flags, app: app}
}

// Register adds the approvals command to the application.
func (cmd *ApprovalsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "approvals",
		Usage:     "Act on decided approval requests once",
		UsageText: "steward approvals",
		Description: `Approvals walks pending-approval/ a single time. Approved requests are
executed and moved to approved/, rejected ones are moved to rejected/.
Requests without a decision are left untouched.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *ApprovalsCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	report, err := cmd.app.Gate.Pass(ctx, 0, func(ev steward.Event) {
		printEvent(p, ev)
	})
	if err != nil {
		return fmt.Errorf("approval pass: %w", err)
	}

	if len(report.Events) == 0 {
		p.Infof("No decided approval requests")
	}
	if report.Awaiting > 0 {
		p.Printf("%d request(s) waiting for a decision, run 'steward review' to decide", report.Awaiting)
	}
	if report.Held > 0 {
		p.Warnf("%d request(s) held as flagged or stuck", report.Held)
	}
	return nil
}
