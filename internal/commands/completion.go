package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/steward"
)

// PendingIDCompleter returns a ShellCompleteFunc that suggests the ids of
// records in pending-approval as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func PendingIDCompleter(app *steward.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		recs, err := app.Review.Pending(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, rec := range recs {
			_, _ = fmt.Fprintln(w, rec.ID())
		}
	}
}
