package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/steward/internal/core/styles"
	"github.com/hay-kot/steward/pkg/tmpl"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("workspace", c.Workspace, required),
		criterio.Run("policy.payment_threshold", c.Policy.PaymentThreshold, positive),
		criterio.Run("policy.max_attempts", c.Policy.MaxAttempts, atLeastOne),
		criterio.Run("loop.max_iterations", c.Loop.MaxIterations, atLeastOne),
		criterio.Run("loop.interval", int(c.Loop.Interval), nonNegative),
		criterio.Run("loop.watch_interval", int(c.Loop.WatchInterval), nonNegative),
		criterio.Run("executors.timeout", int(c.Executors.Timeout), nonNegative),
		criterio.Run("theme", c.Theme, knownTheme),
	)
}

// ValidateDeep performs comprehensive validation of the configuration including
// executor template syntax, glob patterns, and file accessibility. The configPath
// argument specifies the config file location to validate (empty string skips
// config file check). This calls Validate() first for basic structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("workspace", c.Workspace, isDirectoryOrNotExist),
		c.validateExecutors(),
		c.validatePatterns(),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateExecutors() error {
	var errs criterio.FieldErrorsBuilder

	commands := []struct {
		field string
		cmd   string
	}{
		{"executors.message_send", c.Executors.MessageSend},
		{"executors.social_post", c.Executors.SocialPost},
		{"executors.payment", c.Executors.Payment},
	}

	for _, ec := range commands {
		if ec.cmd == "" {
			continue
		}
		if _, err := tmpl.Parse(ec.cmd); err != nil {
			errs = errs.Append(ec.field, fmt.Errorf("template error: %w", err))
		}
	}

	return errs.ToError()
}

func (c *Config) validatePatterns() error {
	var errs criterio.FieldErrorsBuilder

	for i, p := range c.Intake.Patterns {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("intake.patterns[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}
	for i, p := range c.Intake.Ignore {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("intake.ignore[%d]", i), fmt.Errorf("invalid glob %q", p))
		}
	}

	return errs.ToError()
}

func knownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.ThemeNames(), ", "))
	}
	return nil
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func positive(v float64) error {
	if v <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func atLeastOne(v int) error {
	if v < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func nonNegative(v int) error {
	if v < 0 {
		return fmt.Errorf("cannot be negative")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
