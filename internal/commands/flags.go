package commands

import (
	"os"
	"path/filepath"

	"github.com/hay-kot/steward/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	Workspace  string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "steward", "config.yaml")
}

// DefaultWorkspace returns the workspace directory: the current directory,
// since a workspace is a folder of state directories the user works in.
func DefaultWorkspace() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// LogFilePath returns the log file path, defaulting to <workspace>/logs/steward.log.
func (f *Flags) LogFilePath() string {
	if f.LogFile != "" {
		return f.LogFile
	}
	return filepath.Join(f.Workspace, "logs", "steward.log")
}
