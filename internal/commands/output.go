package commands

import (
	"fmt"
	"strings"

	"github.com/hay-kot/steward/internal/printer"
	"github.com/hay-kot/steward/internal/steward"
)

// printEvent prints one record outcome. Moves show the destination state;
// records that stayed show the ledger decision.
func printEvent(p *printer.Printer, ev steward.Event) {
	label := strings.ToLower(ev.Decision)
	if ev.Moved() {
		label = ev.To.String()
	}

	msg := ev.RecordID
	if ev.Note != "" {
		msg = fmt.Sprintf("%s  %s", ev.RecordID, ev.Note)
	}
	p.State(label, msg)
}

func printReport(p *printer.Printer, r steward.Report) {
	p.Printf("")
	switch r.Phase {
	case steward.PhaseConverged:
		p.Success("Converged", fmt.Sprintf("%d iteration(s), %d record(s) processed", r.Iterations, r.Processed))
	case steward.PhaseBudgetExhausted:
		if r.Idle {
			p.Warnf("Waiting on reviewers, stopped after %d iteration(s)", r.Iterations)
		} else {
			p.Warnf("Iteration budget exhausted after %d iteration(s)", r.Iterations)
		}
		if r.Remaining > 0 {
			p.Printf("  %d record(s) still in intake", r.Remaining)
		}
		if r.Awaiting > 0 {
			p.Printf("  %d approval request(s) waiting for a decision", r.Awaiting)
		}
	default:
		p.Infof("Stopped in phase %s", r.Phase)
	}
}
