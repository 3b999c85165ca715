// Package classify assigns a category, priority, and payment facts to a
// record using fixed keyword and pattern rules.
package classify

import (
	"regexp"
	"strings"

	"github.com/hay-kot/steward/internal/core/record"
)

// Category is the routing class of a record.
type Category string

const (
	Financial    Category = "financial"
	BusinessLead Category = "business_lead"
	Urgent       Category = "urgent"
	General      Category = "general"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var (
	financialKeywords = []string{"invoice", "payment", "bill"}
	businessKeywords  = []string{"sales", "client", "project", "lead"}
	urgentKeywords    = []string{"urgent", "asap", "emergency"}

	multistepPattern = regexp.MustCompile(`\b(first|then|next|finally|step \d+|phase)\b`)
)

// Result holds the facts derived from a record.
type Result struct {
	Type             string
	Category         Category
	Priority         string
	PaymentAmount    *float64
	AmountRule       string
	RequiresApproval bool
	IsMultistep      bool
	IsComplete       bool
	Keywords         []string
}

// HasPayment reports whether an amount was extracted.
func (r Result) HasPayment() bool {
	return r.PaymentAmount != nil
}

// Classifier applies the rule set with a configured payment threshold.
type Classifier struct {
	threshold float64
	rules     []Rule
}

// New creates a classifier. Amounts strictly greater than threshold require
// approval.
func New(threshold float64) *Classifier {
	return &Classifier{threshold: threshold, rules: DefaultRules}
}

// Threshold returns the configured payment threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Rules returns the amount extraction rules in order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify derives a Result from a record's header and body. It never fails;
// text with no recognized markers is general work at the declared priority.
func (c *Classifier) Classify(rec *record.Record) Result {
	text := Text(rec)
	lower := strings.ToLower(text)

	res := Result{
		Type:       rec.Type(),
		Category:   General,
		Priority:   PriorityMedium,
		IsComplete: rec.IsComplete(),
	}
	if p := strings.ToLower(rec.Header.Get(record.KeyPriority)); p != "" {
		res.Priority = p
	}

	fin := matched(lower, financialKeywords)
	biz := matched(lower, businessKeywords)
	urg := matched(lower, urgentKeywords)

	switch {
	case len(fin) > 0:
		res.Category = Financial
	case len(biz) > 0:
		res.Category = BusinessLead
	case len(urg) > 0:
		res.Category = Urgent
	}
	if len(urg) > 0 {
		res.Priority = PriorityHigh
	}

	res.Keywords = append(append(append(res.Keywords, fin...), biz...), urg...)

	if v, rule, ok := ExtractAmount(c.rules, text); ok {
		res.PaymentAmount = &v
		res.AmountRule = rule
		res.RequiresApproval = v > c.threshold
	}

	res.IsMultistep = multistepPattern.MatchString(lower)

	return res
}

// Text is the classification input: header values followed by the body.
func Text(rec *record.Record) string {
	var b strings.Builder
	for _, v := range rec.Header.Values() {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	b.WriteString(rec.Body)
	return b.String()
}

func matched(text string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			out = append(out, k)
		}
	}
	return out
}
