// Package steward wires the record store, classifier, planner, approval gate
// and dispatcher into the services the CLI runs.
package steward

import (
	"time"

	"github.com/hay-kot/steward/internal/core/ledger"
	"github.com/hay-kot/steward/internal/core/record"
)

// Event describes what happened to one record. Every event is also a
// ledger entry.
type Event struct {
	Iteration int          `json:"iteration,omitempty"`
	RecordID  string       `json:"record_id"`
	Type      string       `json:"type"`
	From      record.State `json:"from"`
	To        record.State `json:"to,omitempty"` // empty when the record stayed put
	Decision  string       `json:"decision"`
	Note      string       `json:"note,omitempty"`
	Plan      string       `json:"plan,omitempty"`
}

// Moved reports whether the record changed state.
func (e Event) Moved() bool {
	return e.To != "" && e.To != e.From
}

// Observer receives events as they happen.
type Observer func(Event)

func (e Event) entry(at time.Time, executedBy string) ledger.Entry {
	return ledger.Entry{
		Time:       at,
		ActionID:   e.RecordID,
		Type:       e.Type,
		Decision:   e.Decision,
		ExecutedBy: executedBy,
		Details:    e.Note,
	}
}
