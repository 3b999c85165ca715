// Package executil provides shell execution utilities for external collaborators.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	maxStderrLen = 500
	maxStdoutLen = 4096
)

// limitedWriter caps writes to a bytes.Buffer at a maximum byte count.
// Bytes beyond the limit are silently discarded.
type limitedWriter struct {
	buf *bytes.Buffer
	n   int64
	max int64
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n >= w.max {
		return len(p), nil
	}
	remaining := w.max - w.n
	origLen := len(p)
	if int64(origLen) > remaining {
		p = p[:remaining]
	}
	n, err := w.buf.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, err
	}
	return origLen, nil
}

// Executor runs rendered shell commands on behalf of action collaborators.
type Executor interface {
	// RunSh executes cmd with `sh -c` in dir (empty means inherit cwd), feeding
	// stdin when non-nil. It returns stdout, capped at 4KiB.
	RunSh(ctx context.Context, dir, cmd string, stdin io.Reader) ([]byte, error)
}

// RealExecutor calls actual shell commands.
type RealExecutor struct{}

// RunSh executes a shell command. On failure, stderr is returned as the error
// message, capped at 500 bytes to prevent large or ANSI-polluted output from
// corrupting logs or the ledger. The original *exec.ExitError is preserved via
// wrapping so callers can inspect exit codes with errors.As.
func (e *RealExecutor) RunSh(ctx context.Context, dir, cmd string, stdin io.Reader) ([]byte, error) {
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	if dir != "" {
		c.Dir = dir
	}
	if stdin != nil {
		c.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &limitedWriter{buf: &stdout, max: maxStdoutLen}
	c.Stderr = &limitedWriter{buf: &stderr, max: maxStderrLen}

	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w", msg, err)
		}
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}
