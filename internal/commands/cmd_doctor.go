package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/core/doctor"
	"github.com/hay-kot/steward/internal/core/styles"
	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
	"github.com/hay-kot/steward/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *steward.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *steward.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your steward workspace",
		UsageText:   "steward doctor [options]",
		Description: "Runs diagnostic checks on configuration, workspace directories, executor commands, and held records.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., create missing directories)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	format, err := iojson.ParseFormat(cmd.format)
	if err != nil {
		return err
	}

	results := cmd.app.Doctor.RunChecks(ctx, cmd.flags.ConfigPath, cmd.autofix)

	if format == iojson.FormatJSON {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(printer.Ctx(ctx), results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	totals := doctor.Summarize(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Totals   `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: totals.Healthy(),
		Summary: totals,
		Checks:  results,
	}

	if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
		return err
	}
	if !totals.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(p *printer.Printer, results []doctor.Result) error {
	p.Printf("")
	p.Section("Steward Doctor")
	p.Printf("")

	for _, result := range results {
		p.Printf("%s", result.Name)

		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			case doctor.StatusFail:
				p.FailItem(item.Label, item.Detail)
			}
		}

		p.Printf("")
	}

	t := doctor.Summarize(results)
	if p.Color() {
		p.Printf("%s  %s  %s",
			styles.SuccessStyle.Render(fmt.Sprintf("%d passed", t.Passed)),
			styles.WarningStyle.Render(fmt.Sprintf("%d warnings", t.Warned)),
			styles.ErrorStyle.Render(fmt.Sprintf("%d failed", t.Failed)),
		)
	} else {
		p.Printf("%d passed  %d warnings  %d failed", t.Passed, t.Warned, t.Failed)
	}

	if !cmd.autofix && t.Fixable > 0 {
		p.Printf("")
		p.Printf("Run 'steward doctor --autofix' to fix %d issue(s)", t.Fixable)
	}

	if !t.Healthy() {
		return cli.Exit("", 1)
	}

	return nil
}
