package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/steward/pkg/executil"
	"github.com/hay-kot/steward/pkg/tmpl"
)

// Command runs a templated shell command as an action executor. The
// template is rendered with the action payload, and the payload text is
// written to the command's stdin.
//
// The command reports back either by printing a JSON object with "success"
// and "message" fields, or by its exit status with stdout as the message.
type Command struct {
	Template string
	Timeout  time.Duration
	Dir      string
	Exec     executil.Executor
}

func (c *Command) run(ctx context.Context, data any, stdin string) (Result, error) {
	line, err := tmpl.Render(c.Template, data)
	if err != nil {
		return Result{}, fmt.Errorf("render command: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	out, err := c.Exec.RunSh(ctx, c.Dir, line, strings.NewReader(stdin))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("command timed out after %s", c.Timeout)
		}
		return Result{}, fmt.Errorf("command failed: %w", err)
	}
	return ParseResult(out), nil
}

// ParseResult interprets executor stdout.
func ParseResult(out []byte) Result {
	trimmed := strings.TrimSpace(string(out))

	if strings.HasPrefix(trimmed, "{") {
		var raw struct {
			Success *bool  `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(trimmed), &raw); err == nil && raw.Success != nil {
			return Result{Success: *raw.Success, Message: raw.Message}
		}
	}

	return Result{Success: true, Message: strings.Join(strings.Fields(trimmed), " ")}
}

// CommandSender sends messages through a Command.
type CommandSender struct{ Command }

func (c *CommandSender) Send(ctx context.Context, msg Message) (Result, error) {
	return c.run(ctx, msg, msg.Body)
}

// CommandPublisher publishes posts through a Command.
type CommandPublisher struct{ Command }

func (c *CommandPublisher) Publish(ctx context.Context, post Post) (Result, error) {
	return c.run(ctx, post, post.Text)
}

// CommandPayer makes payments through a Command.
type CommandPayer struct{ Command }

func (c *CommandPayer) Pay(ctx context.Context, p Payment) (Result, error) {
	return c.run(ctx, p, "")
}
