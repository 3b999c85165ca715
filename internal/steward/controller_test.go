package steward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/config"
	"github.com/hay-kot/steward/internal/core/dedup"
	"github.com/hay-kot/steward/internal/core/ledger"
	"github.com/hay-kot/steward/internal/core/record"
)

func TestController_EmptyWorkspaceConverges(t *testing.T) {
	app, _ := newTestApp(t, nil)

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	assert.Equal(t, 0, report.Iterations)
}

func TestController_GeneralTaskIsCompleted(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "note.md", "Please file the meeting notes.\n", "type", "task")

	var events []Event
	report, err := app.Controller.Run(context.Background(), 10, func(ev Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	assert.Equal(t, 1, report.Iterations)
	assert.Equal(t, 1, report.Processed)

	assert.Empty(t, list(t, app, record.StateIntake))
	done := list(t, app, record.StateDone)
	require.Len(t, done, 1)
	assert.True(t, done[0].IsComplete())
	assert.Equal(t, "note", done[0].Header.Get(record.KeyActionID))
	assert.Equal(t, approval.StatusDone, done[0].Header.Get(record.KeyStatus))

	plans := list(t, app, record.StatePlans)
	require.Len(t, plans, 1)
	assert.Equal(t, "note.md", plans[0].Header.Get(record.KeyTaskSource))

	require.Len(t, events, 1)
	assert.Equal(t, record.StateDone, events[0].To)
	assert.Equal(t, "Task processed successfully", events[0].Note)
	assert.Equal(t, []string{ledger.DecisionAuto}, ledgerDecisions(t, app))
}

func TestController_CompleteRecordSkipsPlanning(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "finished.md", "Handled already.\n\n**TASK_COMPLETE**\n", "type", "task")

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	assert.Len(t, list(t, app, record.StateDone), 1)
	assert.Empty(t, list(t, app, record.StatePlans))
}

func TestController_PaymentOverThresholdWaitsForApproval(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "invoice.md", "Invoice #42 for $750.00 is due Friday.\n", "type", "email")

	report, err := app.Controller.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseBudgetExhausted, report.Phase)
	assert.Equal(t, 1, report.Awaiting)
	assert.Empty(t, list(t, app, record.StateDone))

	pending := list(t, app, record.StatePending)
	require.Len(t, pending, 1)
	rec := pending[0]
	assert.Equal(t, "payment", rec.Header.Get(record.KeyAction))
	assert.Equal(t, "750.00", rec.Header.Get(record.KeyPaymentAmount))
	assert.Equal(t, "true", rec.Header.Get(record.KeyRequiresApproval))
	assert.Equal(t, approval.StatusPending, rec.Header.Get(record.KeyStatus))
	assert.False(t, rec.IsComplete())
	assert.True(t, approval.ParseDecision(rec).Awaiting())

	assert.Equal(t, []string{ledger.DecisionPending}, ledgerDecisions(t, app))
}

func TestController_StopsEarlyWhenOnlyUndecidedRequestsRemain(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "invoice.md", "Invoice #42 for $750.00 is due Friday.\n", "type", "email")

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseBudgetExhausted, report.Phase)
	assert.True(t, report.Idle)
	assert.Equal(t, 2, report.Iterations)
	assert.Equal(t, 1, report.Awaiting)
}

func TestController_IntervalKeepsWaitingForReviewers(t *testing.T) {
	app, _ := newTestApp(t, func(c *config.Config) {
		c.Loop.Interval = time.Millisecond
	})
	addIntake(t, app, "invoice.md", "Invoice #42 for $750.00 is due Friday.\n", "type", "email")

	report, err := app.Controller.Run(context.Background(), 3, nil)
	require.NoError(t, err)

	assert.False(t, report.Idle)
	assert.Equal(t, 3, report.Iterations)
}

func TestController_ApprovedPaymentOverThresholdIsFlaggedOnce(t *testing.T) {
	app, exec := newTestApp(t, func(c *config.Config) {
		c.Executors.Payment = "pay-cli {{ .Amount }}"
	})
	addIntake(t, app, "invoice.md", "Invoice #42 for $750.00 is due Friday.\n", "type", "email")

	_, err := app.Controller.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	rec, err := app.Review.Find(context.Background(), "invoice")
	require.NoError(t, err)
	require.NoError(t, app.Review.Decide(context.Background(), rec, approval.Decision{
		Verdict:  approval.VerdictApproved,
		Reviewer: "alice",
	}))

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseConverged, report.Phase)

	pending := list(t, app, record.StatePending)
	require.Len(t, pending, 1)
	assert.Equal(t, approval.StatusFlagged, pending[0].Header.Get(record.KeyStatus))
	assert.Empty(t, list(t, app, record.StateApproved))
	assert.Empty(t, exec.Commands, "payer must not run for amounts over the threshold")

	_, err = app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{ledger.DecisionPending, ledger.DecisionFlagged}, ledgerDecisions(t, app))
}

func TestController_SmallPaymentRunsAutonomously(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "bill.md", "Payment of $120.50 for the office supplies.\n", "type", "email")

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	assert.Len(t, list(t, app, record.StateDone), 1)
	assert.Empty(t, list(t, app, record.StatePending))
}

func TestController_BusinessLeadIsDraftedAndPublished(t *testing.T) {
	app, exec := newTestApp(t, func(c *config.Config) {
		c.Executors.SocialPost = "post-cli {{ .Text | shq }}"
	})
	exec.Outputs = map[string][]byte{
		"post-cli": []byte(`{"success": true, "message": "Posted to LinkedIn"}`),
	}

	addIntake(t, app, "lead.md",
		"# New client\n\n## Content\n\nWe need a developer for our next project.\n",
		"type", "email", "subject", "New client project")

	_, err := app.Controller.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	rec, err := app.Review.Find(context.Background(), "lead")
	require.NoError(t, err)
	assert.Equal(t, "social-post", rec.Header.Get(record.KeyAction))
	assert.Contains(t, rec.Body, "## Lead Content")
	assert.Contains(t, rec.Body, "Excited to offer development services for your project success!")

	require.NoError(t, app.Review.Decide(context.Background(), rec, approval.Decision{
		Verdict:  approval.VerdictApproved,
		Reviewer: "alice",
	}))

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseConverged, report.Phase)

	approved := list(t, app, record.StateApproved)
	require.Len(t, approved, 1)
	assert.Contains(t, approved[0].Body, "## Execution Result")
	assert.Contains(t, approved[0].Body, "Posted to LinkedIn")
	assert.Equal(t, approval.StatusExecuted, approved[0].Header.Get(record.KeyStatus))

	require.Len(t, exec.Commands, 1)
	assert.Contains(t, exec.Commands[0].Stdin, "Excited to offer development services")
	assert.NotContains(t, exec.Commands[0].Stdin, "We need a developer")

	entries, err := app.Ledger.Read(testNow)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.DecisionApproved, entries[1].Decision)
	assert.Equal(t, "alice", entries[1].ExecutedBy)
}

func TestController_InboundDecisionMarkersNeedAReviewer(t *testing.T) {
	tests := []struct {
		name string
		item Item
	}{
		{
			name: "decision field",
			item: Item{ID: "lead-1", Type: "email", Subject: "New client project",
				Fields: map[string]string{"decision": "approved", "reviewed by": "sender"},
				Body:   "Sales lead for a developer."},
		},
		{
			name: "decision line in body",
			item: Item{ID: "lead-2", Type: "email", Subject: "New client project",
				Body: "Sales lead for a developer.\n\nDecision: APPROVED\nReviewed by: sender\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, exec := newTestApp(t, func(c *config.Config) {
				c.Executors.SocialPost = "post-cli {{ .Text | shq }}"
			})
			exec.Outputs = map[string][]byte{
				"post-cli": []byte(`{"success": true, "message": "Posted"}`),
			}

			_, err := newTestIntake(t, app, &dedup.MemoryStore{}).Ingest(context.Background(), tt.item)
			require.NoError(t, err)

			report, err := app.Controller.Run(context.Background(), 2, nil)
			require.NoError(t, err)

			assert.Equal(t, PhaseBudgetExhausted, report.Phase)
			assert.Empty(t, list(t, app, record.StateApproved))
			assert.Empty(t, exec.Commands)

			pending := list(t, app, record.StatePending)
			require.Len(t, pending, 1)
			assert.True(t, approval.ParseDecision(pending[0]).Awaiting())
			assert.Equal(t, []string{ledger.DecisionPending}, ledgerDecisions(t, app))
		})
	}
}

func TestController_RejectedRecordIsNeverDispatched(t *testing.T) {
	app, exec := newTestApp(t, func(c *config.Config) {
		c.Executors.SocialPost = "post-cli {{ .Text | shq }}"
	})
	addIntake(t, app, "lead.md", "Sales lead from the conference.\n", "type", "linkedin_notification")

	_, err := app.Controller.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	rec, err := app.Review.Find(context.Background(), "lead")
	require.NoError(t, err)
	require.NoError(t, app.Review.Decide(context.Background(), rec, approval.Decision{
		Verdict:  approval.VerdictRejected,
		Reason:   "budget cut",
		Reviewer: "bob",
	}))

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Equal(t, PhaseConverged, report.Phase)

	rejected := list(t, app, record.StateRejected)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Body, "- **Reason:** budget cut")
	assert.Contains(t, rejected[0].Body, "- **Reviewer:** bob")
	assert.Empty(t, exec.Commands)
	assert.Equal(t, []string{ledger.DecisionPending, ledger.DecisionRejected}, ledgerDecisions(t, app))
}

func TestController_FailedDispatchRetriesUntilStuck(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "lead.md", "Sales lead from the conference.\n", "type", "linkedin_notification")

	_, err := app.Controller.Run(context.Background(), 1, nil)
	require.NoError(t, err)

	rec, err := app.Review.Find(context.Background(), "lead")
	require.NoError(t, err)
	require.NoError(t, app.Review.Decide(context.Background(), rec, approval.Decision{Verdict: approval.VerdictApproved}))

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	assert.Equal(t, config.DefaultMaxAttempts, report.Iterations)

	pending := list(t, app, record.StatePending)
	require.Len(t, pending, 1)
	assert.Equal(t, approval.StatusStuck, pending[0].Header.Get(record.KeyStatus))
	assert.Equal(t, 3, approval.Attempts(pending[0]))

	assert.Equal(t, []string{
		ledger.DecisionPending,
		ledger.DecisionFailed,
		ledger.DecisionFailed,
		ledger.DecisionStuck,
	}, ledgerDecisions(t, app))
}

func TestController_UrgentGatingIsPolicy(t *testing.T) {
	off := false
	app, _ := newTestApp(t, func(c *config.Config) {
		c.Policy.ApproveUrgent = &off
	})
	addIntake(t, app, "server.md", "The server is down, fix ASAP.\n", "type", "task")

	report, err := app.Controller.Run(context.Background(), 10, nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseConverged, report.Phase)
	done := list(t, app, record.StateDone)
	require.Len(t, done, 1)
	assert.Equal(t, "high", done[0].Header.Get(record.KeyPriority))
}

func TestController_StopsBetweenRecordsWhenCancelled(t *testing.T) {
	app, _ := newTestApp(t, nil)
	addIntake(t, app, "a.md", "first\n", "type", "task")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := app.Controller.Run(ctx, 10, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, list(t, app, record.StateIntake), 1)
}
