package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/steward"
)

// NewRoot builds the steward command tree with global flags bound to flags.
// app is filled in by the caller's Before hook; commands only dereference it
// when they run.
func NewRoot(flags *Flags, app *steward.App) *cli.Command {
	root := &cli.Command{
		Name:      "steward",
		Usage:     "Drive a folder of task records to completion",
		UsageText: "steward [global options] command [command options]",
		Description: `Steward works a workspace of markdown task records. Each run classifies
what arrived in intake, writes a plan, completes routine work on its own and
parks anything risky in pending-approval until a human decides.

Run 'steward run' to iterate until the workspace converges.
Run 'steward review' to decide pending approvals.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("STEWARD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <workspace>/logs/steward.log)",
				Sources:     cli.EnvVars("STEWARD_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("STEWARD_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "workspace",
				Aliases:     []string{"w"},
				Usage:       "workspace directory holding the state folders",
				Sources:     cli.EnvVars("STEWARD_WORKSPACE"),
				Value:       DefaultWorkspace(),
				Destination: &flags.Workspace,
			},
		},
	}

	root = NewRunCmd(flags, app).Register(root)
	root = NewApprovalsCmd(flags, app).Register(root)
	root = NewReviewCmd(flags, app).Register(root)
	root = NewIngestCmd(flags, app).Register(root)
	root = NewWatchCmd(flags, app).Register(root)
	root = NewStatusCmd(flags, app).Register(root)
	root = NewShowCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)

	return root
}
