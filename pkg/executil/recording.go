package executil

import (
	"context"
	"io"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir   string
	Cmd   string
	Stdin string
}

// Program returns the first word of the command line.
func (r RecordedCommand) Program() string {
	fields := strings.Fields(r.Cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps program names to their output.
	// Key is the first word of the command (e.g., "notify-send").
	Outputs map[string][]byte

	// Errors maps program names to their error.
	Errors map[string]error
}

// RunSh records the command and returns configured output/error.
func (e *RecordingExecutor) RunSh(ctx context.Context, dir, cmd string, stdin io.Reader) ([]byte, error) {
	var input string
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		input = string(data)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec := RecordedCommand{Dir: dir, Cmd: cmd, Stdin: input}
	e.Commands = append(e.Commands, rec)

	var out []byte
	var err error

	if e.Outputs != nil {
		out = e.Outputs[rec.Program()]
	}
	if e.Errors != nil {
		err = e.Errors[rec.Program()]
	}

	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
