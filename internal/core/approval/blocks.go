package approval

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/steward/internal/core/action"
	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/plan"
	"github.com/hay-kot/steward/internal/core/record"
)

// Status header values written by the gate.
const (
	StatusPending  = "pending"
	StatusFlagged  = "flagged"
	StatusStuck    = "stuck"
	StatusExecuted = "executed"
	StatusRejected = "rejected"
	StatusDone     = "done"
)

// RequestHeading opens the review section. Decision lines count only below it.
const RequestHeading = "## Approval Request"

// inherited lists headers a reviewer writes. A record arriving with them set
// was not decided by anyone who saw the request, so they are cleared.
var inherited = []string{record.KeyDecision, KeyReason, KeyReviewedBy, record.KeyAttempts}

// Reserved reports whether key is a header only the approval flow writes.
// Producers must not set these on inbound records.
func Reserved(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case record.KeyDecision, KeyReason, KeyReviewedBy, record.KeyAttempts,
		record.KeyAction, record.KeyActionID, record.KeyStatus,
		record.KeyRequiresApproval, record.KeyPaymentAmount:
		return true
	}
	return false
}

// Annotate stamps a record headed for pending-approval with the headers a
// reviewer and the dispatcher need, and appends review instructions unless
// the body already ends with them.
func Annotate(rec *record.Record, res classify.Result, kind action.Kind, now time.Time) {
	h := &rec.Header
	for _, k := range inherited {
		h.Delete(k)
	}
	h.SetDefault(record.KeyActionID, rec.ID())
	h.SetDefault(record.KeyType, res.Type)
	h.SetDefault(record.KeyCreated, now.Format(time.RFC3339))
	h.Set(record.KeyAction, string(kind))
	h.Set(record.KeyStatus, StatusPending)
	h.Set(record.KeyPriority, res.Priority)
	h.Set(record.KeyCategory, string(res.Category))
	if len(res.Keywords) > 0 {
		h.Set(record.KeyKeywords, strings.Join(res.Keywords, ", "))
	}
	if res.PaymentAmount != nil {
		h.Set(record.KeyPaymentAmount, strconv.FormatFloat(*res.PaymentAmount, 'f', 2, 64))
	}
	h.Set(record.KeyRequiresApproval, strconv.FormatBool(res.RequiresApproval))

	block := RequestBlock(rec.ID(), res, kind)
	if !strings.HasSuffix(rec.Body, block) {
		rec.AppendBody(block)
	}
}

// RequestBlock renders the review section of an approval request. It never
// contains a line ParseDecision would accept.
func RequestBlock(id string, res classify.Result, kind action.Kind) string {
	var b strings.Builder
	b.WriteString(RequestHeading + "\n\n")
	fmt.Fprintf(&b, "- **Action:** %s\n", kind)
	fmt.Fprintf(&b, "- **Category:** %s\n", res.Category)
	fmt.Fprintf(&b, "- **Priority:** %s\n", res.Priority)
	if res.PaymentAmount != nil {
		fmt.Fprintf(&b, "- **Payment Amount:** %s\n", plan.Money(*res.PaymentAmount))
	}
	b.WriteString("\n### How to decide\n\n")
	b.WriteString("Below this section, add a line that starts with `Decision` and a colon, followed by APPROVED or REJECTED.\n")
	b.WriteString("Optional `Reason` and `Reviewed by` lines use the same form.\n")
	fmt.Fprintf(&b, "Or run `steward review %s`.\n", id)
	return b.String()
}

// ExecutionBlock records a successful dispatch.
func ExecutionBlock(message, details, authorizedBy string, at time.Time) string {
	var b strings.Builder
	b.WriteString("## Execution Result\n\n")
	b.WriteString("- **Status:** EXECUTED\n")
	fmt.Fprintf(&b, "- **Executed At:** %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Result:** %s\n", message)
	if details != "" {
		fmt.Fprintf(&b, "- **Details:** %s\n", details)
	}
	fmt.Fprintf(&b, "- **Authorized By:** %s\n", authorizedBy)
	return b.String()
}

// RejectionBlock records a rejection. The reason is kept verbatim.
func RejectionBlock(d Decision, at time.Time) string {
	reason := d.Reason
	if reason == "" {
		reason = "Not specified"
	}
	reviewer := d.Reviewer
	if reviewer == "" {
		reviewer = "Unknown"
	}

	var b strings.Builder
	b.WriteString("## Rejection Details\n\n")
	b.WriteString("- **Status:** REJECTED\n")
	fmt.Fprintf(&b, "- **Rejected At:** %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Reason:** %s\n", reason)
	fmt.Fprintf(&b, "- **Reviewer:** %s\n", reviewer)
	return b.String()
}

// Attempts returns the recorded dispatch attempt count.
func Attempts(rec *record.Record) int {
	n, err := strconv.Atoi(rec.Header.Get(record.KeyAttempts))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// RecordFailure increments the attempt counter and marks the record stuck
// once maxAttempts is reached. It returns the new count and whether the
// record is now stuck.
func RecordFailure(rec *record.Record, maxAttempts int) (int, bool) {
	n := Attempts(rec) + 1
	rec.Header.Set(record.KeyAttempts, strconv.Itoa(n))
	if maxAttempts > 0 && n >= maxAttempts {
		rec.Header.Set(record.KeyStatus, StatusStuck)
		return n, true
	}
	return n, false
}

// IsHeld reports whether a pending record was parked by the gate and should
// not be dispatched again until a human intervenes.
func IsHeld(rec *record.Record) bool {
	switch rec.Header.Get(record.KeyStatus) {
	case StatusFlagged, StatusStuck:
		return true
	}
	return false
}
