package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
	"github.com/hay-kot/steward/pkg/iojson"
)

type IngestCmd struct {
	flags    *Flags
	app      *steward.App
	producer string
	format   string
	reader   iojson.FileReader[[]steward.Item]
}

// NewIngestCmd creates a new ingest command.
func NewIngestCmd(flags *Flags, app *steward.App) *IngestCmd {
	return &IngestCmd{flags: flags, app: app}
}

// Register adds the ingest command to the application.
func (cmd *IngestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ingest",
		Usage:     "Write producer items into intake",
		UsageText: "steward ingest [options] < items.json",
		Description: `Ingest reads a JSON array of items from a file or stdin and writes one
intake record per item. Items whose id the producer already delivered are
skipped, so pollers can resend overlapping batches.

Item fields: id (required), type, source, from, subject, fields, body.

Example:
  gmail-poll | steward ingest --producer gmail`,
		Flags: []cli.Flag{
			cmd.reader.Flag(),
			&cli.StringFlag{
				Name:        "producer",
				Aliases:     []string{"p"},
				Usage:       "producer name, each producer keeps its own processed set",
				Value:       "ingest",
				Destination: &cmd.producer,
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

type ingestResult struct {
	ID     string `json:"id"`
	Record string `json:"record,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (cmd *IngestCmd) run(ctx context.Context, c *cli.Command) error {
	format, err := iojson.ParseFormat(cmd.format)
	if err != nil {
		return err
	}

	items, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	intake, err := cmd.app.Intake(ctx, cmd.producer)
	if err != nil {
		return err
	}

	results := make([]ingestResult, 0, len(items))
	var ingestErr error
	for _, item := range items {
		rec, err := intake.Ingest(ctx, item)
		switch {
		case errors.Is(err, steward.ErrDuplicate):
			results = append(results, ingestResult{ID: item.ID, Status: "duplicate"})
		case errors.Is(err, steward.ErrMissingID):
			results = append(results, ingestResult{ID: item.ID, Status: "invalid", Error: err.Error()})
		case err != nil:
			ingestErr = err
		default:
			results = append(results, ingestResult{ID: item.ID, Record: rec.Name, Status: "created"})
		}
		if ingestErr != nil {
			break
		}
	}

	// Persist what was ingested even when a later item failed.
	if err := intake.Flush(ctx); err != nil {
		return fmt.Errorf("save processed set: %w", err)
	}
	if ingestErr != nil {
		return ingestErr
	}

	if format == iojson.FormatJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, results)
	}

	p := printer.Ctx(ctx)
	for _, r := range results {
		switch r.Status {
		case "created":
			p.Successf("%s -> intake/%s", r.ID, r.Record)
		case "duplicate":
			p.Printf("  %s already ingested", r.ID)
		default:
			p.Warnf("item skipped: %s", r.Error)
		}
	}
	return nil
}
