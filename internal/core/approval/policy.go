// Package approval decides which records need a human decision and reads
// that decision back out of the record.
package approval

import (
	"fmt"

	"github.com/hay-kot/steward/internal/core/action"
	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/plan"
	"github.com/hay-kot/steward/internal/core/record"
)

// Policy holds the routing rules.
type Policy struct {
	PaymentThreshold     float64
	ApproveBusinessLeads bool
	ApproveUrgent        bool
	MaxAttempts          int
}

// Route returns the destination state for a freshly processed record. Any
// record requiring approval goes to pending-approval regardless of category.
func (p Policy) Route(cat classify.Category, requiresApproval bool) record.State {
	switch {
	case requiresApproval:
		return record.StatePending
	case cat == classify.BusinessLead && p.ApproveBusinessLeads:
		return record.StatePending
	case cat == classify.Urgent && p.ApproveUrgent:
		return record.StatePending
	default:
		return record.StateDone
	}
}

// Note describes why a record was routed the way it was.
func (p Policy) Note(res classify.Result) string {
	switch {
	case res.RequiresApproval && res.PaymentAmount != nil:
		return fmt.Sprintf("FLAGGED: Payment %s > %s", plan.Money(*res.PaymentAmount), plan.Threshold(p.PaymentThreshold))
	case res.Category == classify.BusinessLead && p.ApproveBusinessLeads:
		return "Business lead detected, social post drafted for review"
	case res.Category == classify.Urgent && p.ApproveUrgent:
		return "URGENT: Requires immediate attention"
	default:
		return "Task processed successfully"
	}
}

// ActionFor picks the action an approved record will perform. Financial
// work is always a payment and business leads publish a post; anything else
// follows the declared record type.
func ActionFor(res classify.Result) action.Kind {
	switch res.Category {
	case classify.Financial:
		if res.PaymentAmount != nil {
			return action.KindPayment
		}
	case classify.BusinessLead:
		return action.KindSocialPost
	}
	return action.ParseKind(res.Type)
}
