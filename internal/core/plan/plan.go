// Package plan builds the category-specific checklist recorded alongside
// every processed task.
package plan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/record"
)

// ContentLimit is the number of source characters copied into a plan.
const ContentLimit = 1000

// Marker is the checklist prefix of a step.
type Marker string

const (
	MarkerPending Marker = "[ ]"
	MarkerFlag    Marker = "[!]"
	MarkerDone    Marker = "[x]"
)

// Step is a single checklist entry.
type Step struct {
	Label  string
	Marker Marker
}

// Plan is the derived checklist for one source record.
type Plan struct {
	SourceID   string
	SourceName string
	Iteration  int
	Created    time.Time
	Result     classify.Result
	Threshold  float64
	Steps      []Step
	Content    string
}

// Generate builds the plan for a classified record. The source record is not
// modified.
func Generate(src *record.Record, res classify.Result, threshold float64, iteration int, now time.Time) Plan {
	return Plan{
		SourceID:   src.ID(),
		SourceName: src.Name,
		Iteration:  iteration,
		Created:    now,
		Result:     res,
		Threshold:  threshold,
		Steps:      Steps(res, threshold),
		Content:    src.Text(),
	}
}

func pending(labels ...string) []Step {
	steps := make([]Step, len(labels))
	for i, l := range labels {
		steps[i] = Step{Label: l, Marker: MarkerPending}
	}
	return steps
}

// Steps returns the step template for a classification.
func Steps(res classify.Result, threshold float64) []Step {
	switch res.Category {
	case classify.BusinessLead:
		return pending(
			"Review lead details and keywords",
			"Determine service type and benefit",
			"Draft response or LinkedIn post",
			"Submit for HITL approval if needed",
			"Follow up or mark complete",
		)
	case classify.Financial:
		if res.RequiresApproval && res.PaymentAmount != nil {
			flag := Step{
				Label:  fmt.Sprintf("FLAG: Payment %s exceeds %s threshold", Money(*res.PaymentAmount), Threshold(threshold)),
				Marker: MarkerFlag,
			}
			return append([]Step{flag}, pending(
				"Review invoice/payment details",
				"Submit to Pending_Approval for review",
				"Await approval decision",
				"Process payment or reject",
			)...)
		}
		return pending(
			"Review payment details",
			"Verify amount and recipient",
			"Process payment",
			"Mark complete",
		)
	case classify.Urgent:
		return pending(
			"IMMEDIATE: Review urgent task",
			"Prioritize over other tasks",
			"Take immediate action",
			"Confirm resolution",
			"Mark complete",
		)
	default:
		return pending(
			"Review task details",
			"Identify required actions",
			"Execute actions",
			"Verify completion",
			"Mark complete",
		)
	}
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Threshold formats a threshold without trailing zeros.
func Threshold(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

// FileName returns the plan file name for the source id and creation time.
func (p Plan) FileName() string {
	return fmt.Sprintf("plan_%s_%s.md", p.SourceID, p.Created.Format("2006-01-02_15-04-05"))
}

// Record converts the plan into a persistable record.
func (p Plan) Record() *record.Record {
	res := p.Result
	h := record.NewHeader(
		record.KeyType, "action_plan",
		record.KeyTaskSource, p.SourceName,
		record.KeyCreated, p.Created.Format(time.RFC3339),
		record.KeyStatus, "in_progress",
		record.KeyPriority, res.Priority,
		record.KeyCategory, string(res.Category),
		"is_multistep", strconv.FormatBool(res.IsMultistep),
		record.KeyRequiresApproval, strconv.FormatBool(res.RequiresApproval),
		record.KeyIteration, strconv.Itoa(p.Iteration),
	)
	return record.New(p.FileName(), h, p.Body())
}

// Body renders the markdown plan document.
func (p Plan) Body() string {
	res := p.Result

	amount := "N/A"
	if res.PaymentAmount != nil {
		amount = Money(*res.PaymentAmount)
	}
	approval := "No"
	if res.RequiresApproval {
		approval = "Yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n# Action Plan: %s\n\n", p.SourceID)

	b.WriteString("## Task Summary\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Source | `%s` |\n", p.SourceName)
	fmt.Fprintf(&b, "| Type | %s |\n", res.Type)
	fmt.Fprintf(&b, "| Category | %s |\n", res.Category)
	fmt.Fprintf(&b, "| Priority | %s |\n", res.Priority)
	fmt.Fprintf(&b, "| Payment Amount | %s |\n", amount)
	fmt.Fprintf(&b, "| Requires Approval | %s |\n", approval)
	if len(res.Keywords) > 0 {
		fmt.Fprintf(&b, "| Keywords | %s |\n", strings.Join(res.Keywords, ", "))
	}

	b.WriteString("\n## Action Steps\n\n")
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%s **Step %d:** %s\n", s.Marker, i+1, s.Label)
	}

	b.WriteString("\n## Original Content\n\n```\n")
	b.WriteString(Truncate(p.Content, ContentLimit))
	b.WriteString("\n```\n\n---\n")
	fmt.Fprintf(&b, "*Iteration: %d*\n", p.Iteration)

	return b.String()
}

// Truncate returns the first n characters of s, with "..." appended when s
// was longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
