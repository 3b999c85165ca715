package steward

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/dispatch"
	"github.com/hay-kot/steward/internal/core/ledger"
	"github.com/hay-kot/steward/internal/core/logging"
	"github.com/hay-kot/steward/internal/core/record"
)

// PassReport summarizes one approval pass.
type PassReport struct {
	Approved int     `json:"approved"`
	Rejected int     `json:"rejected"`
	Failed   int     `json:"failed"`
	Flagged  int     `json:"flagged"`
	Stuck    int     `json:"stuck"`
	Awaiting int     `json:"awaiting"`
	Held     int     `json:"held"`
	Events   []Event `json:"events"`
}

// Gate processes decided records in pending-approval.
type Gate struct {
	store      record.Store
	dispatcher *dispatch.Dispatcher
	ledger     *ledger.Ledger
	policy     approval.Policy
	reviewer   string
	now        func() time.Time
	log        zerolog.Logger
}

// NewGate creates a Gate. reviewer is recorded as the executing identity when
// a decision does not name one.
func NewGate(
	store record.Store,
	dispatcher *dispatch.Dispatcher,
	l *ledger.Ledger,
	policy approval.Policy,
	reviewer string,
	log zerolog.Logger,
) *Gate {
	return &Gate{
		store:      store,
		dispatcher: dispatcher,
		ledger:     l,
		policy:     policy,
		reviewer:   reviewer,
		now:        time.Now,
		log:        log.With().Str("component", "gate").Logger(),
	}
}

// Pass walks pending-approval once. Undecided and held records are left
// alone; approved records are dispatched and rejected ones are closed out.
// Only store and ledger I/O errors are returned.
func (g *Gate) Pass(ctx context.Context, iteration int, observe Observer) (PassReport, error) {
	var report PassReport

	pending, err := g.store.List(ctx, record.StatePending)
	if err != nil {
		return report, fmt.Errorf("list pending: %w", err)
	}

	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if approval.IsHeld(rec) {
			report.Held++
			continue
		}

		d := approval.ParseDecision(rec)
		if d.Awaiting() {
			report.Awaiting++
			continue
		}

		rctx := logging.WithRecordID(ctx, rec.ID())

		var ev Event
		switch d.Verdict {
		case approval.VerdictRejected:
			ev, err = g.reject(rctx, rec, d)
			report.Rejected++
		default:
			ev, err = g.execute(rctx, rec, d, &report)
		}
		if err != nil {
			return report, err
		}

		ev.Iteration = iteration
		if err := g.ledger.Append(ev.entry(g.now(), executedBy(d, g.reviewer))); err != nil {
			return report, fmt.Errorf("append ledger: %w", err)
		}

		report.Events = append(report.Events, ev)
		if observe != nil {
			observe(ev)
		}
	}

	return report, nil
}

func (g *Gate) reject(ctx context.Context, rec *record.Record, d approval.Decision) (Event, error) {
	ev := Event{
		RecordID: rec.ID(),
		Type:     rec.Type(),
		From:     record.StatePending,
		To:       record.StateRejected,
		Decision: ledger.DecisionRejected,
		Note:     d.Reason,
	}

	rec.Header.Set(record.KeyStatus, approval.StatusRejected)
	rec.AppendBody(approval.RejectionBlock(d, g.now()))

	if err := g.store.Move(ctx, rec, record.StatePending, record.StateRejected); err != nil {
		return ev, fmt.Errorf("reject %s: %w", rec.ID(), err)
	}

	g.log.Info().Ctx(ctx).Str("reason", d.Reason).Msg("record rejected")
	return ev, nil
}

func (g *Gate) execute(ctx context.Context, rec *record.Record, d approval.Decision, report *PassReport) (Event, error) {
	ev := Event{
		RecordID: rec.ID(),
		Type:     rec.Type(),
		From:     record.StatePending,
	}

	out := g.dispatcher.Dispatch(ctx, rec)
	ev.Note = out.Message

	switch out.Status {
	case dispatch.StatusSuccess:
		rec.Header.Set(record.KeyStatus, approval.StatusExecuted)
		rec.AppendBody(approval.ExecutionBlock(out.Message, out.Details, executedBy(d, g.reviewer), g.now()))
		if err := g.store.Move(ctx, rec, record.StatePending, record.StateApproved); err != nil {
			return ev, fmt.Errorf("approve %s: %w", rec.ID(), err)
		}
		ev.To = record.StateApproved
		ev.Decision = ledger.DecisionApproved
		report.Approved++
		g.log.Info().Ctx(ctx).Str("kind", out.Kind.String()).Msg("approved action executed")

	case dispatch.StatusFlagged:
		rec.Header.Set(record.KeyStatus, approval.StatusFlagged)
		if err := g.store.Update(ctx, rec); err != nil {
			return ev, fmt.Errorf("flag %s: %w", rec.ID(), err)
		}
		ev.Decision = ledger.DecisionFlagged
		report.Flagged++
		g.log.Warn().Ctx(ctx).Str("message", out.Message).Msg("approved action flagged by policy")

	default:
		n, stuck := approval.RecordFailure(rec, g.policy.MaxAttempts)
		if err := g.store.Update(ctx, rec); err != nil {
			return ev, fmt.Errorf("record failure %s: %w", rec.ID(), err)
		}
		ev.Decision = ledger.DecisionFailed
		if stuck {
			ev.Decision = ledger.DecisionStuck
			report.Stuck++
		} else {
			report.Failed++
		}
		if out.Details != "" {
			ev.Note = out.Message + ": " + out.Details
		}
		g.log.Error().Ctx(ctx).
			Int("attempts", n).
			Bool("stuck", stuck).
			Str("message", out.Message).
			Str("details", out.Details).
			Msg("approved action failed")
	}

	return ev, nil
}

func executedBy(d approval.Decision, fallback string) string {
	if d.Reviewer != "" {
		return d.Reviewer
	}
	return fallback
}
