// Package record defines the persisted work item and the directory-backed
// state machine it moves through.
package record

import (
	"path/filepath"
	"strings"
	"time"
)

// CompletionMarker marks a record as terminal. A record whose text contains it
// is never reclassified or re-planned.
const CompletionMarker = "TASK_COMPLETE"

// Recognized header keys.
const (
	KeyType             = "type"
	KeySource           = "source"
	KeyCreated          = "created"
	KeyStatus           = "status"
	KeyPriority         = "priority"
	KeyCategory         = "category"
	KeyKeywords         = "keywords"
	KeySubject          = "subject"
	KeyFrom             = "from"
	KeyActionID         = "action_id"
	KeyAction           = "action"
	KeyDecision         = "decision"
	KeyAttempts         = "attempts"
	KeyPaymentAmount    = "payment_amount"
	KeyRequiresApproval = "requires_approval"
	KeyTaskSource       = "task_source"
	KeyIteration        = "iteration"
)

// Kind is the role a record plays in the lifecycle.
type Kind string

const (
	KindTask            Kind = "intake-task"
	KindPlan            Kind = "plan"
	KindApprovalRequest Kind = "approval-request"
	KindExecuted        Kind = "executed"
	KindRejected        Kind = "rejected"
)

// Record is a persisted work item: an ordered header and a free-form body.
// The directory holding the file is its state.
type Record struct {
	// Name is the file name inside the state directory.
	Name   string
	State  State
	Header Header
	Body   string

	// HasHeader reports whether the source file carried a parsable header
	// block. Records parsed as body-only render back without one unless
	// header fields are added.
	HasHeader bool
}

// New creates a record with the given file name, header and body.
func New(name string, header Header, body string) *Record {
	return &Record{
		Name:      name,
		Header:    header,
		Body:      body,
		HasHeader: header.Len() > 0,
	}
}

// ID returns the stable record identifier: the persisted action_id when
// present, otherwise the file name stem.
func (r *Record) ID() string {
	if id := r.Header.Get(KeyActionID); id != "" {
		return id
	}
	return Stem(r.Name)
}

// Kind derives the record's role from its state.
func (r *Record) Kind() Kind {
	switch r.State {
	case StatePlans:
		return KindPlan
	case StatePending:
		return KindApprovalRequest
	case StateApproved, StateDone:
		return KindExecuted
	case StateRejected:
		return KindRejected
	default:
		return KindTask
	}
}

// Type returns the declared type header, or "unknown".
func (r *Record) Type() string {
	if t := r.Header.Get(KeyType); t != "" {
		return t
	}
	return "unknown"
}

// Text returns the full rendered document.
func (r *Record) Text() string {
	return string(r.Render())
}

// IsComplete reports whether the record carries the completion marker.
func (r *Record) IsComplete() bool {
	return strings.Contains(r.Body, CompletionMarker)
}

// AppendBody appends a block to the body separated by a blank line.
func (r *Record) AppendBody(block string) {
	body := strings.TrimRight(r.Body, "\n")
	r.Body = body + "\n\n" + strings.TrimLeft(block, "\n")
	if !strings.HasSuffix(r.Body, "\n") {
		r.Body += "\n"
	}
}

// Render serializes the record back to its file format.
func (r *Record) Render() []byte {
	if !r.HasHeader && r.Header.Len() == 0 {
		return []byte(r.Body)
	}
	return Render(r.Header, r.Body)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Header = r.Header.Clone()
	return &c
}

// Stem returns the file name without its extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompletionBlock is the trailer appended to records closed as done.
func CompletionBlock(at time.Time) string {
	return "---\n**" + CompletionMarker + "** - " + at.Format(time.RFC3339) + "\n"
}
