package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	workspace := t.TempDir()

	cfg, err := Load("", workspace)
	require.NoError(t, err)

	assert.Equal(t, workspace, cfg.Workspace)
	assert.InDelta(t, DefaultPaymentThreshold, cfg.Policy.PaymentThreshold, 0.001)
	assert.Equal(t, DefaultMaxIterations, cfg.Loop.MaxIterations)
	assert.Equal(t, DefaultMaxAttempts, cfg.Policy.MaxAttempts)
	assert.Equal(t, DefaultExecutorTimeout, cfg.Executors.Timeout)
	assert.Equal(t, DefaultReviewer, cfg.Reviewer)
	assert.True(t, cfg.Policy.ApproveBusinessLeadsOrDefault())
	assert.True(t, cfg.Policy.ApproveUrgentOrDefault())
	assert.Equal(t, filepath.Join(workspace, "inbox"), cfg.InboxPath())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, cfg.Loop.MaxIterations)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
policy:
  payment_threshold: 1000
  approve_urgent: false
  max_attempts: 5
loop:
  max_iterations: 3
  interval: 2s
executors:
  social_post: "post-cli --text {{ .Text | shq }}"
  timeout: 30s
intake:
  inbox_dir: /var/drop
reviewer: ops-bot
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, cfg.Policy.PaymentThreshold, 0.001)
	assert.False(t, cfg.Policy.ApproveUrgentOrDefault())
	assert.True(t, cfg.Policy.ApproveBusinessLeadsOrDefault())
	assert.Equal(t, 5, cfg.Policy.MaxAttempts)
	assert.Equal(t, 3, cfg.Loop.MaxIterations)
	assert.Equal(t, 2*time.Second, cfg.Loop.Interval)
	assert.Equal(t, 30*time.Second, cfg.Executors.Timeout)
	assert.Equal(t, "/var/drop", cfg.InboxPath())
	assert.Equal(t, "ops-bot", cfg.Reviewer)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "policy: [unclosed")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, "policy:\n  payment_threshold: -10\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate_EmptyWorkspace(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "workspace", fieldErrs[0].Field)
}

func TestValidateDeep_InvalidExecutorTemplate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = t.TempDir()
	cfg.Executors.SocialPost = "post {{ .Text"
	cfg.Executors.Payment = "pay {{ unknownFunc .Amount }}"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Contains(t, fieldErrs[0].Field, "executors.social_post")
	assert.Contains(t, fieldErrs[0].Err.Error(), "template error")
}

func TestValidateDeep_InvalidPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = t.TempDir()
	cfg.Intake.Patterns = []string{"[unclosed"}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "intake.patterns[0]", fieldErrs[0].Field)
}

func TestValidateDeep_WorkspaceIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.Workspace = file

	err := cfg.ValidateDeep("")
	require.Error(t, err)
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = t.TempDir()

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestProcessedFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = "/ws"
	assert.Equal(t, "/ws/.steward/inbox.processed", cfg.ProcessedFile("inbox"))
}

func TestValidate_UnknownTheme(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspace = t.TempDir()
	cfg.Theme = "solarized-neon"

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "theme", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "tokyo-night")
}
