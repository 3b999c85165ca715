package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/steward/internal/core/classify"
	"github.com/hay-kot/steward/internal/core/plan"
	"github.com/hay-kot/steward/internal/core/record"
)

var (
	toPattern      = regexp.MustCompile(`\*\*To:\*\*\s*(.+)`)
	subjectPattern = regexp.MustCompile(`\*\*Subject:\*\*\s*(.+)`)
)

func field(re *regexp.Regexp, body, fallback string) string {
	if m := re.FindStringSubmatch(body); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return fallback
}

// fromCollaborator converts an executor result into an outcome, keeping its
// message verbatim.
func fromCollaborator(res Result, err error, fallback, details string) Outcome {
	if err != nil {
		return failed(err.Error(), details)
	}
	msg := res.Message
	if msg == "" {
		msg = fallback
	}
	if !res.Success {
		return failed(msg, details)
	}
	return succeeded(msg, details)
}

type messageSend struct {
	sender Sender
}

func (c *messageSend) Execute(ctx context.Context, rec *record.Record) Outcome {
	msg := Message{
		ID:      rec.ID(),
		To:      field(toPattern, rec.Body, "Unknown"),
		Subject: field(subjectPattern, rec.Body, "No Subject"),
		Body:    rec.Body,
	}
	details := fmt.Sprintf("To: %s, Subject: %s", msg.To, msg.Subject)

	if c.sender == nil {
		return succeeded(
			fmt.Sprintf("Message to %s with subject: %s approved, no sender configured", msg.To, msg.Subject),
			details,
		)
	}

	res, err := c.sender.Send(ctx, msg)
	return fromCollaborator(res, err, fmt.Sprintf("Message sent to %s with subject: %s", msg.To, msg.Subject), details)
}

type socialPost struct {
	publisher Publisher
}

func (c *socialPost) Execute(ctx context.Context, rec *record.Record) Outcome {
	text := PostContent(rec.Body)
	details := "Post: " + plan.Truncate(strings.Join(strings.Fields(text), " "), 100)

	if c.publisher == nil {
		return failed("No publisher configured", details)
	}
	if strings.TrimSpace(text) == "" {
		return failed("Post content is empty", details)
	}

	res, err := c.publisher.Publish(ctx, Post{ID: rec.ID(), Text: text})
	return fromCollaborator(res, err, "Post published", details)
}

type payment struct {
	threshold float64
	payer     Payer
}

func (c *payment) Execute(ctx context.Context, rec *record.Record) Outcome {
	amount, _, ok := classify.ExtractAmount(classify.DefaultRules, classify.Text(rec))
	if !ok {
		return failed("No payment amount found", "")
	}

	details := "Amount: " + plan.Money(amount)
	if amount > c.threshold {
		return Outcome{
			Status: StatusFlagged,
			Message: fmt.Sprintf("Payment %s exceeds %s threshold - requires additional approval",
				plan.Money(amount), plan.Threshold(c.threshold)),
			Details: details + ", Status: FLAGGED",
		}
	}

	if c.payer == nil {
		return succeeded(fmt.Sprintf("Payment of %s approved, no payer configured", plan.Money(amount)), details)
	}

	res, err := c.payer.Pay(ctx, Payment{ID: rec.ID(), Amount: amount})
	return fromCollaborator(res, err, fmt.Sprintf("Payment of %s processed", plan.Money(amount)), details)
}
