package steward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/steward/internal/core/action"
	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/ledger"
	"github.com/hay-kot/steward/internal/core/logging"
	"github.com/hay-kot/steward/internal/core/plan"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/hay-kot/steward/pkg/randid"
)

// Phase is the state of a controller run.
type Phase string

const (
	PhaseRunning         Phase = "RUNNING"
	PhaseConverged       Phase = "CONVERGED"
	PhaseBudgetExhausted Phase = "BUDGET_EXHAUSTED"
)

// Report summarizes a controller run.
type Report struct {
	Phase      Phase   `json:"phase"`
	Iterations int     `json:"iterations"`
	Processed  int     `json:"processed"`
	Remaining  int     `json:"remaining"`
	Awaiting   int     `json:"awaiting"`
	// Idle is set when the run stopped before its budget because an
	// iteration changed nothing and no interval lets a reviewer act.
	Idle   bool    `json:"idle,omitempty"`
	Events []Event `json:"events"`
}

// Controller repeats the intake and approval passes until no work is left or
// the iteration budget runs out.
type Controller struct {
	store      record.Store
	classifier *classify.Classifier
	policy     approval.Policy
	gate       *Gate
	ledger     *ledger.Ledger
	reviewer   string
	interval   time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewController creates a Controller. interval is the pause between
// iterations.
func NewController(
	store record.Store,
	classifier *classify.Classifier,
	policy approval.Policy,
	gate *Gate,
	l *ledger.Ledger,
	reviewer string,
	interval time.Duration,
	log zerolog.Logger,
) *Controller {
	return &Controller{
		store:      store,
		classifier: classifier,
		policy:     policy,
		gate:       gate,
		ledger:     l,
		reviewer:   reviewer,
		interval:   interval,
		now:        time.Now,
		log:        log.With().Str("component", "controller").Logger(),
	}
}

// Run processes intake until it converges or maxIterations passes have run.
// Exhausting the budget is reported through the phase, not as an error.
// Cancellation is honored between records.
func (c *Controller) Run(ctx context.Context, maxIterations int, observe Observer) (Report, error) {
	report := Report{Phase: PhaseRunning}
	emit := func(ev Event) {
		report.Events = append(report.Events, ev)
		if observe != nil {
			observe(ev)
		}
	}

	for i := 1; i <= maxIterations; i++ {
		ictx := logging.WithIteration(ctx, i)

		remaining, awaiting, err := c.outstanding(ictx)
		if err != nil {
			return report, err
		}
		if remaining == 0 && awaiting == 0 {
			report.Phase = PhaseConverged
			break
		}

		report.Iterations = i
		c.log.Info().Ctx(ictx).Int("intake", remaining).Msg("iteration started")

		n, err := c.processIntake(ictx, i, emit)
		report.Processed += n
		if err != nil {
			return report, err
		}

		pass, err := c.gate.Pass(ictx, i, emit)
		if err != nil {
			return report, err
		}

		remaining, awaiting, err = c.outstanding(ictx)
		if err != nil {
			return report, err
		}
		report.Remaining, report.Awaiting = remaining, awaiting
		if remaining == 0 && awaiting == 0 {
			report.Phase = PhaseConverged
			break
		}

		// Only undecided requests are left. Without a pause between
		// iterations nothing can decide them before the budget runs out.
		if n == 0 && len(pass.Events) == 0 && remaining == 0 && c.interval == 0 {
			report.Idle = true
			c.log.Info().Ctx(ictx).Int("awaiting", awaiting).Msg("waiting on reviewers, stopping early")
			break
		}

		if i < maxIterations && c.interval > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(c.interval):
			}
		}
	}

	if report.Phase == PhaseRunning {
		report.Phase = PhaseBudgetExhausted
		c.log.Warn().
			Int("iterations", report.Iterations).
			Int("remaining", report.Remaining).
			Int("awaiting", report.Awaiting).
			Msg("iteration budget exhausted")
	}

	return report, nil
}

// outstanding counts intake records and pending-approval records that still
// need a pass: undecided requests and decided ones the gate has not closed.
// Held records wait for a human and do not count.
func (c *Controller) outstanding(ctx context.Context) (remaining, awaiting int, err error) {
	intake, err := c.store.List(ctx, record.StateIntake)
	if err != nil {
		return 0, 0, fmt.Errorf("list intake: %w", err)
	}
	pending, err := c.store.List(ctx, record.StatePending)
	if err != nil {
		return 0, 0, fmt.Errorf("list pending: %w", err)
	}
	for _, rec := range pending {
		if !approval.IsHeld(rec) {
			awaiting++
		}
	}
	return len(intake), awaiting, nil
}

func (c *Controller) processIntake(ctx context.Context, iteration int, observe Observer) (int, error) {
	intake, err := c.store.List(ctx, record.StateIntake)
	if err != nil {
		return 0, fmt.Errorf("list intake: %w", err)
	}

	processed := 0
	for _, rec := range intake {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		ev, err := c.process(logging.WithRecordID(ctx, rec.ID()), rec, iteration)
		if err != nil {
			return processed, err
		}
		processed++

		if err := c.ledger.Append(ev.entry(c.now(), c.reviewer)); err != nil {
			return processed, fmt.Errorf("append ledger: %w", err)
		}
		observe(ev)
	}

	return processed, nil
}

// process takes one intake record to done or pending-approval.
func (c *Controller) process(ctx context.Context, rec *record.Record, iteration int) (Event, error) {
	now := c.now()
	res := c.classifier.Classify(rec)

	ev := Event{
		Iteration: iteration,
		RecordID:  rec.ID(),
		Type:      res.Type,
		From:      record.StateIntake,
	}

	if res.IsComplete {
		if err := c.store.Move(ctx, rec, record.StateIntake, record.StateDone); err != nil {
			return ev, fmt.Errorf("complete %s: %w", rec.ID(), err)
		}
		ev.To = record.StateDone
		ev.Decision = ledger.DecisionAuto
		ev.Note = "Already complete"
		c.log.Debug().Ctx(ctx).Msg("record already complete")
		return ev, nil
	}

	p := plan.Generate(rec, res, c.classifier.Threshold(), iteration, now)
	planRec, err := c.writePlan(ctx, p)
	if err != nil {
		return ev, err
	}
	ev.Plan = planRec.Name

	dest := c.policy.Route(res.Category, res.RequiresApproval)
	ev.Note = c.policy.Note(res)

	switch dest {
	case record.StatePending:
		kind := approval.ActionFor(res)
		if kind == action.KindSocialPost {
			AttachDraft(rec)
		}
		approval.Annotate(rec, res, kind, now)
		ev.Decision = ledger.DecisionPending
	default:
		rec.Header.Set(record.KeyStatus, approval.StatusDone)
		rec.Header.Set(record.KeyPriority, res.Priority)
		rec.Header.Set(record.KeyCategory, string(res.Category))
		rec.AppendBody(record.CompletionBlock(now))
		ev.Decision = ledger.DecisionAuto
	}

	if err := c.store.Move(ctx, rec, record.StateIntake, dest); err != nil {
		return ev, fmt.Errorf("route %s: %w", rec.ID(), err)
	}
	ev.To = dest

	c.log.Info().Ctx(ctx).
		Str("category", string(res.Category)).
		Str("priority", res.Priority).
		Str("to", dest.String()).
		Msg("record routed")

	return ev, nil
}

// writePlan persists a plan, suffixing the name when a plan for the same
// record was already written in the same second.
func (c *Controller) writePlan(ctx context.Context, p plan.Plan) (*record.Record, error) {
	rec := p.Record()
	err := c.store.Create(ctx, record.StatePlans, rec)
	if errors.Is(err, record.ErrExists) {
		rec.Name = record.Stem(rec.Name) + "-" + randid.Generate(6) + ".md"
		err = c.store.Create(ctx, record.StatePlans, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("write plan for %s: %w", p.SourceID, err)
	}
	return rec, nil
}
