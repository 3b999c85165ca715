package executil

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSh_StderrCappedAtMaxLen(t *testing.T) {
	ctx := context.Background()
	e := &RealExecutor{}

	// Write twice the cap to stderr; only the first maxStderrLen bytes should appear in the error.
	longStderr := strings.Repeat("A", maxStderrLen*2)
	cmd := fmt.Sprintf("printf '%%s' '%s' >&2; exit 1", longStderr)

	_, err := e.RunSh(ctx, "", cmd, nil)
	require.Error(t, err)

	errMsg := err.Error()
	assert.LessOrEqual(t, len(errMsg), maxStderrLen+20, "error message should be capped")
	assert.Equal(t, strings.Repeat("A", maxStderrLen), errMsg[:maxStderrLen])
}

func TestRunSh_PreservesExitError(t *testing.T) {
	e := &RealExecutor{}

	_, err := e.RunSh(context.Background(), "", "echo 'error message' >&2; exit 1", nil)
	require.Error(t, err)

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr, "original ExitError should be preserved via wrapping")
	assert.Contains(t, err.Error(), "error message")
}

func TestRunSh_NoStderrReturnsExitError(t *testing.T) {
	e := &RealExecutor{}

	_, err := e.RunSh(context.Background(), "", "exit 2", nil)
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.ExitCode())
}

func TestRunSh_StdoutAndStdin(t *testing.T) {
	e := &RealExecutor{}

	out, err := e.RunSh(context.Background(), "", "tr a-z A-Z", strings.NewReader("posted"))
	require.NoError(t, err)
	assert.Equal(t, "POSTED", strings.TrimSpace(string(out)))
}

func TestRunSh_Dir(t *testing.T) {
	e := &RealExecutor{}
	dir := t.TempDir()

	out, err := e.RunSh(context.Background(), dir, "pwd", nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), dir)
}

func TestRecordingExecutor_RunSh(t *testing.T) {
	ctx := context.Background()

	t.Run("records commands and stdin", func(t *testing.T) {
		e := &RecordingExecutor{}

		_, _ = e.RunSh(ctx, "", "mail-send --to 'a@b.c'", strings.NewReader("body"))
		_, _ = e.RunSh(ctx, "/tmp", "social-post", nil)

		require.Len(t, e.Commands, 2)
		assert.Equal(t, "mail-send", e.Commands[0].Program())
		assert.Equal(t, "body", e.Commands[0].Stdin)
		assert.Equal(t, "/tmp", e.Commands[1].Dir)
	})

	t.Run("returns configured output", func(t *testing.T) {
		e := &RecordingExecutor{
			Outputs: map[string][]byte{"social-post": []byte("post-id-1")},
		}

		out, err := e.RunSh(ctx, "", "social-post --text 'hi'", nil)
		require.NoError(t, err)
		assert.Equal(t, []byte("post-id-1"), out)
	})

	t.Run("returns configured error", func(t *testing.T) {
		expectedErr := errors.New("command failed")
		e := &RecordingExecutor{
			Errors: map[string]error{"social-post": expectedErr},
		}

		_, err := e.RunSh(ctx, "", "social-post", nil)
		assert.Equal(t, expectedErr, err)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		e := &RecordingExecutor{}

		_, _ = e.RunSh(ctx, "", "echo hello", nil)
		require.Len(t, e.Commands, 1)

		e.Reset()
		assert.Empty(t, e.Commands)
	})
}
