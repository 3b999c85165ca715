// Package config handles configuration loading and validation for steward.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/steward/internal/core/styles"
)

// Default values applied to zero-valued configuration fields.
const (
	DefaultPaymentThreshold = 500.0
	DefaultMaxIterations    = 10
	DefaultMaxAttempts      = 3
	DefaultExecutorTimeout  = 2 * time.Minute
	DefaultDebounce         = 500 * time.Millisecond
	DefaultWatchInterval    = time.Minute
	DefaultReviewer         = "steward"
)

// Config holds the application configuration.
type Config struct {
	Policy    Policy    `yaml:"policy"`
	Loop      Loop      `yaml:"loop"`
	Executors Executors `yaml:"executors"`
	Intake    Intake    `yaml:"intake"`

	// Reviewer is recorded in the ledger as the executing identity when an
	// approved record does not name its reviewer, and for autonomous routing.
	Reviewer string `yaml:"reviewer"`

	// Theme names the color palette used for terminal output.
	Theme string `yaml:"theme"`

	Workspace string `yaml:"-"` // set by caller, not from config file
}

// Policy controls which records must wait for a human decision.
type Policy struct {
	// PaymentThreshold is the amount above which a payment requires approval.
	PaymentThreshold float64 `yaml:"payment_threshold"`
	// ApproveBusinessLeads gates every business-lead record behind approval.
	// nil means the default (true).
	ApproveBusinessLeads *bool `yaml:"approve_business_leads"`
	// ApproveUrgent gates every urgent record behind approval.
	// nil means the default (true).
	ApproveUrgent *bool `yaml:"approve_urgent"`
	// MaxAttempts bounds dispatcher retries for an approved record before it
	// is marked stuck.
	MaxAttempts int `yaml:"max_attempts"`
}

// Loop configures the iteration controller.
type Loop struct {
	MaxIterations int `yaml:"max_iterations"`
	// Interval is the pause between iterations. Zero runs iterations back to back.
	Interval time.Duration `yaml:"interval"`
	// WatchInterval is how often `steward watch` triggers a controller run.
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// Executors holds shell command templates for the external collaborators that
// perform approved actions. An empty command means the capability reports
// without delegating (message-send, payment) or fails (social-post).
type Executors struct {
	MessageSend string        `yaml:"message_send"`
	SocialPost  string        `yaml:"social_post"`
	Payment     string        `yaml:"payment"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Intake configures the inbox file producer.
type Intake struct {
	// InboxDir is watched for dropped files. Relative paths resolve against the workspace.
	InboxDir string `yaml:"inbox_dir"`
	// Patterns are doublestar globs matched against file names in the inbox.
	Patterns []string `yaml:"patterns"`
	// Ignore are doublestar globs for files that are never ingested.
	Ignore   []string      `yaml:"ignore"`
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Policy: Policy{
			PaymentThreshold: DefaultPaymentThreshold,
			MaxAttempts:      DefaultMaxAttempts,
		},
		Loop: Loop{
			MaxIterations: DefaultMaxIterations,
			WatchInterval: DefaultWatchInterval,
		},
		Executors: Executors{
			Timeout: DefaultExecutorTimeout,
		},
		Intake: Intake{
			InboxDir: "inbox",
			Patterns: []string{"*"},
			Ignore:   []string{".*", "*.tmp", "*.swp", "*~"},
			Debounce: DefaultDebounce,
		},
		Reviewer: DefaultReviewer,
		Theme:    styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the workspace directory.
// If configPath is empty or doesn't exist, returns defaults with the provided workspace.
func Load(configPath, workspace string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Workspace = workspace

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set workspace since Unmarshal may have cleared it
			cfg.Workspace = workspace
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Policy.PaymentThreshold == 0 {
		c.Policy.PaymentThreshold = defaults.Policy.PaymentThreshold
	}
	if c.Policy.MaxAttempts == 0 {
		c.Policy.MaxAttempts = defaults.Policy.MaxAttempts
	}
	if c.Loop.MaxIterations == 0 {
		c.Loop.MaxIterations = defaults.Loop.MaxIterations
	}
	if c.Loop.WatchInterval == 0 {
		c.Loop.WatchInterval = defaults.Loop.WatchInterval
	}
	if c.Executors.Timeout == 0 {
		c.Executors.Timeout = defaults.Executors.Timeout
	}
	if c.Intake.InboxDir == "" {
		c.Intake.InboxDir = defaults.Intake.InboxDir
	}
	if len(c.Intake.Patterns) == 0 {
		c.Intake.Patterns = defaults.Intake.Patterns
	}
	if c.Intake.Debounce == 0 {
		c.Intake.Debounce = defaults.Intake.Debounce
	}
	if c.Reviewer == "" {
		c.Reviewer = defaults.Reviewer
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// ApproveBusinessLeadsOrDefault reports whether business-lead records require approval.
func (p Policy) ApproveBusinessLeadsOrDefault() bool {
	if p.ApproveBusinessLeads == nil {
		return true
	}
	return *p.ApproveBusinessLeads
}

// ApproveUrgentOrDefault reports whether urgent records require approval.
func (p Policy) ApproveUrgentOrDefault() bool {
	if p.ApproveUrgent == nil {
		return true
	}
	return *p.ApproveUrgent
}

// InboxPath returns the absolute inbox directory for the file producer.
func (c *Config) InboxPath() string {
	if filepath.IsAbs(c.Intake.InboxDir) {
		return c.Intake.InboxDir
	}
	return filepath.Join(c.Workspace, c.Intake.InboxDir)
}

// LogsDir returns the directory holding the ledger and run log.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Workspace, "logs")
}

// ProcessedFile returns the path of the ProcessedSet for the named producer.
func (c *Config) ProcessedFile(producer string) string {
	return filepath.Join(c.Workspace, ".steward", producer+".processed")
}
