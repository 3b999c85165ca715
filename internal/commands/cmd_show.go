package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/core/styles"
	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
)

const defaultWrap = 100

type ShowCmd struct {
	flags *Flags
	app   *steward.App
	raw   bool
}

// NewShowCmd creates a new show command.
func NewShowCmd(flags *Flags, app *steward.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Render a record",
		UsageText: "steward show <id> [--raw]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the record file as stored",
				Destination: &cmd.raw,
			},
		},
		ShellComplete: PendingIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("missing record id")
	}

	rec, err := cmd.app.Store.Find(ctx, id)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		_, err := w.Write(rec.Render())
		return err
	}

	p := printer.Ctx(ctx)
	p.Section(rec.Name)
	p.KeyValue("state", styles.StateStyle(rec.State.String()).Render(rec.State.String()))
	for _, f := range rec.Header.Fields() {
		p.KeyValue(f.Key, f.Value)
	}

	out, err := renderMarkdown(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func renderMarkdown(rec *record.Record) (string, error) {
	wrap := defaultWrap
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 && width < wrap {
		wrap = width
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(strings.TrimSpace(rec.Body) + "\n")
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rec.Name, err)
	}
	return out, nil
}
