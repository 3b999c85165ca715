package steward

import (
	"context"
	"fmt"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/record"
)

// Status is a snapshot of the workspace.
type Status struct {
	Counts   map[record.State]int `json:"counts"`
	Awaiting []string             `json:"awaiting"`
	Decided  []string             `json:"decided"`
	Flagged  []string             `json:"flagged"`
	Stuck    []string             `json:"stuck"`
}

// Outstanding reports whether a controller run would find work.
func (s Status) Outstanding() bool {
	return s.Counts[record.StateIntake] > 0 || len(s.Awaiting) > 0 || len(s.Decided) > 0
}

// StatusService reads workspace state.
type StatusService struct {
	store record.Store
}

// NewStatusService creates a StatusService.
func NewStatusService(store record.Store) *StatusService {
	return &StatusService{store: store}
}

// Get counts records per state and sorts pending-approval by what it waits on.
func (s *StatusService) Get(ctx context.Context) (Status, error) {
	st := Status{
		Counts:   make(map[record.State]int, len(record.States())),
		Awaiting: []string{},
		Decided:  []string{},
		Flagged:  []string{},
		Stuck:    []string{},
	}

	for _, state := range record.States() {
		recs, err := s.store.List(ctx, state)
		if err != nil {
			return st, fmt.Errorf("list %s: %w", state, err)
		}
		st.Counts[state] = len(recs)

		if state != record.StatePending {
			continue
		}
		for _, rec := range recs {
			switch rec.Header.Get(record.KeyStatus) {
			case approval.StatusFlagged:
				st.Flagged = append(st.Flagged, rec.ID())
			case approval.StatusStuck:
				st.Stuck = append(st.Stuck, rec.ID())
			default:
				if approval.ParseDecision(rec).Awaiting() {
					st.Awaiting = append(st.Awaiting, rec.ID())
				} else {
					st.Decided = append(st.Decided, rec.ID())
				}
			}
		}
	}

	return st, nil
}
