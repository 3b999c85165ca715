package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
	"github.com/hay-kot/steward/pkg/iojson"
)

type StatusCmd struct {
	flags   *Flags
	app     *steward.App
	jsonOut bool
}

// NewStatusCmd creates a new status command.
func NewStatusCmd(flags *Flags, app *steward.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application.
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show record counts and requests needing attention",
		UsageText: "steward status [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOut,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	st, err := cmd.app.Status.Get(ctx)
	if err != nil {
		return err
	}

	if cmd.jsonOut {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, st)
	}

	p := printer.Ctx(ctx)
	p.Section("Workspace " + cmd.flags.Config.Workspace)
	for _, state := range record.States() {
		p.State(state.String(), fmt.Sprintf("%d", st.Counts[state]))
	}

	lists := []struct {
		title string
		ids   []string
	}{
		{"Awaiting decision", st.Awaiting},
		{"Decided, not yet processed", st.Decided},
		{"Flagged", st.Flagged},
		{"Stuck", st.Stuck},
	}
	for _, l := range lists {
		if len(l.ids) == 0 {
			continue
		}
		p.Printf("")
		p.Printf("%s: %s", l.title, strings.Join(l.ids, ", "))
	}

	if st.Outstanding() {
		p.Printf("")
		p.Infof("Run 'steward run' to process outstanding work")
	}
	return nil
}
