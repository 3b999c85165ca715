package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/core/styles"
	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
)

const verdictSkip = "SKIP"

type ReviewCmd struct {
	flags    *Flags
	app      *steward.App
	approve  bool
	reject   bool
	reason   string
	reviewer string
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags, app *steward.App) *ReviewCmd {
	return &ReviewCmd{flags: flags, app: app}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Record approval decisions",
		UsageText: "steward review [id] [options]",
		Description: `Review writes an APPROVED or REJECTED decision into approval requests.

Without --approve or --reject a form asks for each decision. Without an id
every request waiting in pending-approval/ is offered in turn, followed by
flagged and stuck ones. Deciding a flagged or stuck request releases it for
the next approval pass.

Examples:
  steward review                                  # decide everything interactively
  steward review invoice_42                       # decide one request
  steward review invoice_42 --reject --reason "budget cut"`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "approve",
				Usage:       "approve without prompting",
				Destination: &cmd.approve,
			},
			&cli.BoolFlag{
				Name:        "reject",
				Usage:       "reject without prompting",
				Destination: &cmd.reject,
			},
			&cli.StringFlag{
				Name:        "reason",
				Usage:       "reason recorded with the decision",
				Destination: &cmd.reason,
			},
			&cli.StringFlag{
				Name:        "reviewer",
				Usage:       "reviewer identity (defaults to $USER)",
				Sources:     cli.EnvVars("STEWARD_REVIEWER", "USER"),
				Destination: &cmd.reviewer,
			},
		},
		ShellComplete: PendingIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ReviewCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.approve && cmd.reject {
		return fmt.Errorf("--approve and --reject are mutually exclusive")
	}

	var recs []*record.Record
	if id := c.Args().First(); id != "" {
		rec, err := cmd.app.Review.Find(ctx, id)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	} else {
		pending, err := cmd.app.Review.Pending(ctx)
		if err != nil {
			return err
		}
		recs = pending
	}

	p := printer.Ctx(ctx)
	if len(recs) == 0 {
		p.Infof("Nothing to review")
		return nil
	}

	out, release := p.Hold()
	defer func() { _ = release() }()

	for _, rec := range recs {
		d, err := cmd.decide(ctx, rec)
		if errors.Is(err, huh.ErrUserAborted) {
			break
		}
		if err != nil {
			return err
		}
		if d.Awaiting() {
			out.Printf("%s skipped", rec.ID())
			continue
		}

		if err := cmd.app.Review.Decide(ctx, rec, d); err != nil {
			return err
		}
		out.Successf("%s %s", rec.ID(), d.Verdict)
	}

	out.Printf("Run 'steward approvals' to act on the decisions")
	return nil
}

func (cmd *ReviewCmd) decide(ctx context.Context, rec *record.Record) (approval.Decision, error) {
	d := approval.Decision{Reason: cmd.reason, Reviewer: cmd.reviewer}

	switch {
	case cmd.approve:
		d.Verdict = approval.VerdictApproved
		return d, nil
	case cmd.reject:
		d.Verdict = approval.VerdictRejected
		return d, nil
	}

	verdict := verdictSkip
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(rec.ID()).
				Description(summary(rec)),
			huh.NewSelect[string]().
				Title("Decision").
				Options(
					huh.NewOption("Approve", string(approval.VerdictApproved)),
					huh.NewOption("Reject", string(approval.VerdictRejected)),
					huh.NewOption("Skip", verdictSkip),
				).
				Value(&verdict),
			huh.NewInput().
				Title("Reason").
				Value(&d.Reason),
			huh.NewInput().
				Title("Reviewed by").
				Value(&d.Reviewer),
		),
	).WithTheme(styles.FormTheme())

	if err := form.RunWithContext(ctx); err != nil {
		return d, err
	}

	d.Verdict = approval.ParseVerdict(verdict)
	return d, nil
}

func summary(rec *record.Record) string {
	h := rec.Header
	s := fmt.Sprintf("action: %s\ncategory: %s\npriority: %s", h.Get(record.KeyAction), h.Get(record.KeyCategory), h.Get(record.KeyPriority))
	if amount := h.Get(record.KeyPaymentAmount); amount != "" {
		s += "\namount: $" + amount
	}
	if status := h.Get(record.KeyStatus); status == approval.StatusFlagged || status == approval.StatusStuck {
		s += "\nstatus: " + status
	}
	return s
}
