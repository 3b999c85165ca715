package steward

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/steward/internal/core/approval"
	"github.com/hay-kot/steward/internal/core/record"
)

// ReviewService records human decisions on approval requests.
type ReviewService struct {
	store record.Store
	log   zerolog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(store record.Store, log zerolog.Logger) *ReviewService {
	return &ReviewService{store: store, log: log.With().Str("component", "review").Logger()}
}

// Pending returns the approval requests still waiting for a decision,
// followed by held ones.
func (s *ReviewService) Pending(ctx context.Context) ([]*record.Record, error) {
	recs, err := s.store.List(ctx, record.StatePending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	var open, held []*record.Record
	for _, rec := range recs {
		if approval.IsHeld(rec) {
			held = append(held, rec)
			continue
		}
		if approval.ParseDecision(rec).Awaiting() {
			open = append(open, rec)
		}
	}
	return append(open, held...), nil
}

// Find loads an approval request by id.
func (s *ReviewService) Find(ctx context.Context, id string) (*record.Record, error) {
	rec, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.State != record.StatePending {
		return nil, fmt.Errorf("%s is in %s: %w", id, rec.State, record.ErrStateMismatch)
	}
	return rec, nil
}

// Decide writes d into the record. A previous decision is replaced and a
// held record is released so the next approval pass acts on it.
func (s *ReviewService) Decide(ctx context.Context, rec *record.Record, d approval.Decision) error {
	if d.Awaiting() {
		return fmt.Errorf("decision for %s has no verdict", rec.ID())
	}

	rec.Body = StripDecision(rec.Body)
	rec.Header.Set(record.KeyDecision, string(d.Verdict))
	if approval.IsHeld(rec) {
		rec.Header.Set(record.KeyStatus, approval.StatusPending)
		rec.Header.Delete(record.KeyAttempts)
	}
	rec.AppendBody(approval.DecisionBlock(d))

	if err := s.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("record decision for %s: %w", rec.ID(), err)
	}

	s.log.Info().
		Str("record_id", rec.ID()).
		Str("decision", string(d.Verdict)).
		Str("reviewer", d.Reviewer).
		Msg("decision recorded")
	return nil
}

// StripDecision removes Decision sections written by an earlier review.
func StripDecision(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))

	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			skipping = strings.EqualFold(trimmed, "## Decision")
		}
		if !skipping {
			out = append(out, line)
		}
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}
