package approval

import (
	"regexp"
	"strings"

	"github.com/hay-kot/steward/internal/core/record"
)

// Verdict is a reviewer's decision.
type Verdict string

const (
	VerdictNone     Verdict = ""
	VerdictApproved Verdict = "APPROVED"
	VerdictRejected Verdict = "REJECTED"
)

// Decision is the parsed human input on an approval request.
type Decision struct {
	Verdict  Verdict
	Reason   string
	Reviewer string
}

// Awaiting reports whether no decision has been recorded yet.
func (d Decision) Awaiting() bool {
	return d.Verdict == VerdictNone
}

var (
	approvePattern  = regexp.MustCompile(`(?i)Decision:\s*\[?(APPROVED|APPROVE)\]?`)
	rejectPattern   = regexp.MustCompile(`(?i)Decision:\s*\[?(REJECTED|REJECT)\]?`)
	reasonPattern   = regexp.MustCompile(`Reason:\s*(.+)`)
	reviewerPattern = regexp.MustCompile(`Reviewed by:\s*(.+)`)
)

// ParseVerdict maps a free-form decision value onto a Verdict.
func ParseVerdict(s string) Verdict {
	switch strings.ToUpper(strings.Trim(strings.TrimSpace(s), "[]")) {
	case "APPROVED", "APPROVE":
		return VerdictApproved
	case "REJECTED", "REJECT":
		return VerdictRejected
	}
	return VerdictNone
}

// Header keys a reviewer may set instead of body lines.
const (
	KeyReason     = "reason"
	KeyReviewedBy = "reviewed by"
)

// ParseDecision reads a decision from a record. A decision header wins;
// otherwise the body is scanned for a decision line, approval first. Once a
// record carries a request section only lines below it are read, so text
// quoted from the original message cannot decide it.
func ParseDecision(rec *record.Record) Decision {
	var d Decision

	body := rec.Body
	if i := requestStart(body); i >= 0 {
		body = body[i:]
	}

	if v := ParseVerdict(rec.Header.Get(record.KeyDecision)); v != VerdictNone {
		d.Verdict = v
	} else if approvePattern.MatchString(body) {
		d.Verdict = VerdictApproved
	} else if rejectPattern.MatchString(body) {
		d.Verdict = VerdictRejected
	}

	if m := reasonPattern.FindStringSubmatch(body); m != nil {
		d.Reason = strings.TrimSpace(m[1])
	} else {
		d.Reason = rec.Header.Get(KeyReason)
	}

	if m := reviewerPattern.FindStringSubmatch(body); m != nil {
		d.Reviewer = strings.TrimSpace(m[1])
	} else {
		d.Reviewer = rec.Header.Get(KeyReviewedBy)
	}

	return d
}

// requestStart returns the offset of the last request heading in body, or -1.
func requestStart(body string) int {
	return strings.LastIndex("\n"+body, "\n"+RequestHeading+"\n")
}
